// Package lock provides per-key mutual exclusion for hike operations.
//
// Within one hike, location updates must be serialized relative to other
// updates, strategy reads, and the final end call, because strategy
// recomputation discards and recreates the whole set. Cross-hike operations
// need no ordering, so a keyed lock is enough.
package lock

import "context"

// Locker grants exclusive access to a key. Lock blocks until the lock is
// held or ctx is done; the returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
