package domain

import "time"

// HikeExportRow is a single row in a user's hike-history export: one row per
// completed hike, denormalized with the fields of the route it followed so
// the output is flat and self-contained.
type HikeExportRow struct {
	CompletedHikeID string
	UserID          string
	EndedAt         time.Time
	DurationMinutes int
	ExitPointID     string

	// Route fields — repeated from the planned route the hike followed.
	RouteID        string
	TrailheadID    string
	TotalMinutes   int
	TransitMinutes int
	HikingMinutes  int
	Criteria       string
}
