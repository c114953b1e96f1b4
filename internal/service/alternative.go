package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/repo"
)

// RoutePlanner is the planner operation the alternative generator depends on.
// *PlannerService satisfies it; tests inject a mock.
type RoutePlanner interface {
	Plan(ctx context.Context, req PlanRequest) (domain.PlannedRoute, error)
}

// AlternativeService re-runs the planner for an existing route under new
// criteria or constraints. Absence of an alternative is an expected outcome,
// not an error, so planner validation and not-found failures are recovered
// here and reported as "no alternative".
type AlternativeService struct {
	routes  repo.RouteRepo
	planner RoutePlanner
}

// NewAlternativeService constructs an AlternativeService.
func NewAlternativeService(routes repo.RouteRepo, planner RoutePlanner) *AlternativeService {
	return &AlternativeService{routes: routes, planner: planner}
}

// Alternative replans the route with the same origin, destination, and
// constraints but new criteria. It returns nil when no meaningfully
// different alternative exists: either the planner could not produce one
// (validation or not-found failures are swallowed), or the result has the
// same transit and hiking minutes as the original. Any other planner
// failure propagates.
func (s *AlternativeService) Alternative(ctx context.Context, routeID uuid.UUID, criteria domain.Criteria) (*domain.PlannedRoute, error) {
	const op = "service.AlternativeService.Alternative"

	original, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("%s: route %s: %w", op, routeID, err)
	}

	alt, err := s.planner.Plan(ctx, PlanRequest{
		Origin:      original.Origin,
		TrailheadID: original.DestinationTrailheadID,
		Constraints: original.Constraints,
		Criteria:    criteria,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Identical timings mean the new criteria changed nothing worth offering.
	if alt.TransitMinutes == original.TransitMinutes && alt.HikingMinutes == original.HikingMinutes {
		return nil, nil
	}

	return &alt, nil
}

// UpdateConstraints replans the route with its original criteria under new
// constraints. It returns nil specifically when the planner reports
// infeasibility (a validation failure), letting callers branch on
// feasibility without error handling. Everything else — including a missing
// route — propagates.
func (s *AlternativeService) UpdateConstraints(ctx context.Context, routeID uuid.UUID, constraints domain.Constraints) (*domain.PlannedRoute, error) {
	const op = "service.AlternativeService.UpdateConstraints"

	original, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("%s: route %s: %w", op, routeID, err)
	}

	replanned, err := s.planner.Plan(ctx, PlanRequest{
		Origin:      original.Origin,
		TrailheadID: original.DestinationTrailheadID,
		Constraints: constraints,
		Criteria:    original.Criteria,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &replanned, nil
}
