package domain

import "github.com/google/uuid"

// Trailhead is an entry point to one or more hiking trails, itself reachable
// from a transit stop. Reference data.
type Trailhead struct {
	ID                 uuid.UUID
	Name               string
	Position           Position
	ConnectingTrailIDs []uuid.UUID
}

// Trail is a hiking trail reachable from a trailhead. Reference data.
// EstimatedMinutes is the full round-trip hiking duration for the trail.
type Trail struct {
	ID               uuid.UUID
	Name             string
	EstimatedMinutes int
	Description      string
}
