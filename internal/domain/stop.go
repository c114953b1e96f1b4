package domain

import "github.com/google/uuid"

// TransitStop is a fixed point served by public transportation.
// Reference data: loaded once, never mutated by the core.
type TransitStop struct {
	ID           uuid.UUID
	Name         string
	Position     Position
	ServedRoutes []string
}
