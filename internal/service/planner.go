// Package service contains the business logic for TrailHop: the route
// feasibility planner, the alternative generator, the active hike lifecycle,
// and the exit strategy engine. Services validate inputs, enforce business
// rules, and orchestrate repo calls. No SQL lives here — services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/geo"
	"github.com/ldevries/trailhop/internal/repo"
)

// Transit speed constants, km/h. "faster" models express service by raising
// the speed constant; it changes nothing else about selection.
const (
	transitSpeedKmh        = 40.0
	expressTransitSpeedKmh = 60.0
)

// ScenicClassifier is the optional collaborator consulted by the scenic
// selection policy. Implementations may fail; the planner degrades to the
// default rule, so correctness never depends on the classifier responding.
type ScenicClassifier interface {
	Classify(ctx context.Context, name, description string) (bool, error)
}

// PlanRequest carries the inputs of one planning run.
type PlanRequest struct {
	Origin      domain.Position
	TrailheadID uuid.UUID
	Constraints domain.Constraints
	Criteria    domain.Criteria
}

// PlannerService implements the route feasibility planner: it splits the
// caller's total time budget into a transit round trip and a hiking budget,
// then selects the best-fitting trail under the requested criteria.
type PlannerService struct {
	trailheads repo.TrailheadRepo
	trails     repo.TrailRepo
	stops      repo.TransitStopRepo
	routes     repo.RouteRepo
	classifier ScenicClassifier // nil when no classifier is configured

	now   func() time.Time
	newID func() uuid.UUID
}

// NewPlannerService constructs a PlannerService. classifier may be nil, in
// which case "scenic" falls back to the default selection rule.
func NewPlannerService(
	trailheads repo.TrailheadRepo,
	trails repo.TrailRepo,
	stops repo.TransitStopRepo,
	routes repo.RouteRepo,
	classifier ScenicClassifier,
) *PlannerService {
	return &PlannerService{
		trailheads: trailheads,
		trails:     trails,
		stops:      stops,
		routes:     routes,
		classifier: classifier,
		now:        time.Now,
		newID:      uuid.New,
	}
}

// Plan validates the request, computes the transit round trip between the
// stops nearest the origin and the destination trailhead, selects a trail
// that fits the remaining budget, and persists the result as a new record.
// Existing routes are never modified — every replan produces a new row.
func (s *PlannerService) Plan(ctx context.Context, req PlanRequest) (domain.PlannedRoute, error) {
	const op = "service.PlannerService.Plan"

	if err := req.Origin.Validate(); err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := req.Constraints.Validate(); err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: %w", op, err)
	}
	criteria, err := domain.ParseCriteria(string(req.Criteria))
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: %w", op, err)
	}

	trailhead, err := s.trailheads.GetByID(ctx, req.TrailheadID)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: trailhead %s: %w", op, req.TrailheadID, err)
	}

	originStop, err := s.stops.Nearest(ctx, req.Origin)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: stop near origin: %w", op, err)
	}
	destStop, err := s.stops.Nearest(ctx, trailhead.Position)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: stop near trailhead %s: %w", op, trailhead.ID, err)
	}

	speed := transitSpeedKmh
	if criteria == domain.CriteriaFaster {
		speed = expressTransitSpeedKmh
	}

	legKm := geo.HaversineKm(originStop.Position.Lat, originStop.Position.Lng,
		destStop.Position.Lat, destStop.Position.Lng)
	oneWay := legKm / speed * 60
	transitMinutes := int(math.Round(2 * oneWay))

	hikingBudget := req.Constraints.MaxTravelMinutes - transitMinutes
	if hikingBudget <= 0 {
		return domain.PlannedRoute{}, fmt.Errorf(
			"%s: %w: insufficient time: round-trip transit takes %d of %d minutes",
			op, domain.ErrValidation, transitMinutes, req.Constraints.MaxTravelMinutes)
	}

	reachable, err := s.trails.ListByIDs(ctx, trailhead.ConnectingTrailIDs)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: %w", op, err)
	}
	var candidates []domain.Trail
	for _, t := range reachable {
		if t.EstimatedMinutes <= hikingBudget {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return domain.PlannedRoute{}, fmt.Errorf(
			"%s: %w: no suitable trail at trailhead %s within %d minutes",
			op, domain.ErrValidation, trailhead.ID, hikingBudget)
	}

	trail := s.selectTrail(ctx, criteria, candidates)

	legMinutes := int(math.Round(oneWay))
	route := domain.PlannedRoute{
		ID:                     s.newID(),
		Origin:                 req.Origin,
		DestinationTrailheadID: trailhead.ID,
		TransitSegments: []domain.TransitSegment{
			{FromStopID: originStop.ID, ToStopID: destStop.ID, Minutes: legMinutes},
			{FromStopID: destStop.ID, ToStopID: originStop.ID, Minutes: legMinutes},
		},
		HikingSegments: []domain.HikingSegment{
			{TrailID: trail.ID, Minutes: trail.EstimatedMinutes},
		},
		TotalMinutes:   transitMinutes + trail.EstimatedMinutes,
		TransitMinutes: transitMinutes,
		HikingMinutes:  trail.EstimatedMinutes,
		Criteria:       criteria,
		Constraints:    req.Constraints,
		CreatedAt:      s.now(),
	}

	created, err := s.routes.Create(ctx, route)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// selectTrail applies the per-criteria selection policy. Candidates are
// sorted by name ascending first so every policy breaks duration ties the
// same way and results stay stable across runs.
func (s *PlannerService) selectTrail(ctx context.Context, criteria domain.Criteria, candidates []domain.Trail) domain.Trail {
	slices.SortFunc(candidates, func(a, b domain.Trail) int {
		return strings.Compare(a.Name, b.Name)
	})

	switch criteria {
	case domain.CriteriaShorter:
		return pickShortest(candidates)
	case domain.CriteriaScenic:
		return s.pickScenic(ctx, candidates)
	default: // default and faster share the selection rule
		return pickLongest(candidates)
	}
}

// pickLongest returns the candidate with the greatest estimated duration —
// the most hiking the budget allows.
func pickLongest(candidates []domain.Trail) domain.Trail {
	best := candidates[0]
	for _, t := range candidates[1:] {
		if t.EstimatedMinutes > best.EstimatedMinutes {
			best = t
		}
	}
	return best
}

// pickShortest returns the candidate with the smallest estimated duration.
func pickShortest(candidates []domain.Trail) domain.Trail {
	best := candidates[0]
	for _, t := range candidates[1:] {
		if t.EstimatedMinutes < best.EstimatedMinutes {
			best = t
		}
	}
	return best
}

// pickScenic classifies all candidates and picks the longest among those
// classified scenic. No classifier, a failing classifier, or an empty scenic
// set all degrade to the default rule.
func (s *PlannerService) pickScenic(ctx context.Context, candidates []domain.Trail) domain.Trail {
	if s.classifier == nil {
		return pickLongest(candidates)
	}

	var scenic []domain.Trail
	for _, t := range candidates {
		ok, err := s.classifier.Classify(ctx, t.Name, t.Description)
		if err != nil {
			// A candidate the classifier cannot judge is treated as not scenic.
			continue
		}
		if ok {
			scenic = append(scenic, t)
		}
	}
	if len(scenic) == 0 {
		return pickLongest(candidates)
	}
	return pickLongest(scenic)
}
