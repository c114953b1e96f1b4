package domain

import (
	"time"

	"github.com/google/uuid"
)

// HikeStatus is the lifecycle state of an ActiveHike.
type HikeStatus string

const (
	HikeStatusActive HikeStatus = "active"
	HikeStatusEnded  HikeStatus = "ended"
)

// ActiveHike is one hiker's in-progress journey along a planned route.
// Created by start, mutated by location updates, terminated by end.
// For any user at most one ActiveHike has status active; the store enforces
// this with a partial unique index over (user_id) WHERE status = 'active'.
type ActiveHike struct {
	ID              uuid.UUID
	UserID          string
	PlannedRouteID  uuid.UUID
	CurrentPosition Position
	StartedAt       time.Time
	LastUpdateAt    *time.Time // nil until the first location update
	Status          HikeStatus
}

// CompletedHike is the immutable archive record written exactly once when a
// hike ends.
type CompletedHike struct {
	ID              uuid.UUID
	ActiveHikeID    uuid.UUID
	UserID          string
	PlannedRouteID  uuid.UUID
	EndedAt         time.Time
	ExitPointID     uuid.UUID
	DurationMinutes int
}
