package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExitPoint is a place where a hiker can safely leave the trail network.
// Reference data. TransitStopIDs links the exit to public transportation;
// an exit with no linked stop is reachable on foot only.
type ExitPoint struct {
	ID                uuid.UUID
	Name              string
	Position          Position
	AccessibilityTags []string
	TransitStopIDs    []uuid.UUID
}

// ExitStrategy is one ranked option for leaving an in-progress hike from its
// most recent reported position.
//
// The strategy set for a hike is regenerated wholesale on every location
// update and always reflects only the latest position — strategies are never
// individually edited, and sets from successive updates are never merged.
// Score is nil when no scorer is configured or the scorer failed for this
// candidate; ranking treats a missing score as lowest.
type ExitStrategy struct {
	ID             uuid.UUID
	ActiveHikeID   uuid.UUID
	ExitPointID    uuid.UUID
	OnFootMinutes  int
	TransitMinutes int
	ETAMinutes     int
	Score          *float64
	ComputedAt     time.Time
}
