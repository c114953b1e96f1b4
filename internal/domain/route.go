package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Constraints bounds a planned journey. MaxTravelMinutes is the traveler's
// total time allowance covering transit both ways plus the hike itself.
type Constraints struct {
	MaxTravelMinutes int `json:"max_travel_minutes"`
}

// Validate rejects non-positive budgets. The error wraps ErrValidation.
func (c Constraints) Validate() error {
	if c.MaxTravelMinutes <= 0 {
		return fmt.Errorf("%w: max_travel_minutes must be positive, got %d", ErrValidation, c.MaxTravelMinutes)
	}
	return nil
}

// TransitSegment is one leg of public transportation between two stops.
// Serialized as JSONB inside the planned_routes row, so it carries json tags.
type TransitSegment struct {
	FromStopID uuid.UUID `json:"from_stop_id"`
	ToStopID   uuid.UUID `json:"to_stop_id"`
	Minutes    int       `json:"minutes"`
}

// HikingSegment is the on-trail portion of a planned route.
type HikingSegment struct {
	TrailID uuid.UUID `json:"trail_id"`
	Minutes int       `json:"minutes"`
}

// PlannedRoute is the output of the route feasibility planner: a transit
// round trip to a trailhead plus one selected trail that fits the remaining
// time budget.
//
// PlannedRoute records are immutable. Every replan — an alternative, a
// constraint change — inserts a new record, so the store preserves the full
// planning history. Invariant: TotalMinutes = TransitMinutes + HikingMinutes
// and TotalMinutes <= Constraints.MaxTravelMinutes.
type PlannedRoute struct {
	ID                     uuid.UUID
	Origin                 Position
	DestinationTrailheadID uuid.UUID
	TransitSegments        []TransitSegment
	HikingSegments         []HikingSegment
	TotalMinutes           int
	TransitMinutes         int
	HikingMinutes          int
	Criteria               Criteria
	Constraints            Constraints
	CreatedAt              time.Time
}
