package domain

import "errors"

// ErrNotFound is returned by repo and service functions when a referenced
// record does not exist — an unresolved id, or a nearest-stop query over an
// empty transit_stops table.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation: coordinates out of range, a non-positive time budget, an
// infeasible budget, or no candidate trail fitting the hiking budget.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when starting a hike for a user who already owns
// an active one. The one-active-hike-per-user rule is enforced by a partial
// unique index in the store, so it holds across service instances.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrState is returned when an operation is invalid for the hike's current
// lifecycle state, e.g. updating the location of an ended hike.
// Handlers should map this to HTTP 409 Conflict.
var ErrState = errors.New("invalid state")
