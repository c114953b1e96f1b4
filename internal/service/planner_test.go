package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/repo"
	"github.com/ldevries/trailhop/internal/service"
)

// Hand-written test doubles for the repo interfaces, one struct of func
// fields per interface — set only the methods your test needs.

type mockTrailheadRepo struct {
	create  func(ctx context.Context, th domain.Trailhead) (domain.Trailhead, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Trailhead, error)
}

func (m *mockTrailheadRepo) Create(ctx context.Context, th domain.Trailhead) (domain.Trailhead, error) {
	return m.create(ctx, th)
}
func (m *mockTrailheadRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trailhead, error) {
	return m.getByID(ctx, id)
}

type mockTrailRepo struct {
	create    func(ctx context.Context, t domain.Trail) (domain.Trail, error)
	listByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Trail, error)
}

func (m *mockTrailRepo) Create(ctx context.Context, t domain.Trail) (domain.Trail, error) {
	return m.create(ctx, t)
}
func (m *mockTrailRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Trail, error) {
	return m.listByIDs(ctx, ids)
}

type mockTransitStopRepo struct {
	create  func(ctx context.Context, s domain.TransitStop) (domain.TransitStop, error)
	nearest func(ctx context.Context, pos domain.Position) (domain.TransitStop, error)
}

func (m *mockTransitStopRepo) Create(ctx context.Context, s domain.TransitStop) (domain.TransitStop, error) {
	return m.create(ctx, s)
}
func (m *mockTransitStopRepo) Nearest(ctx context.Context, pos domain.Position) (domain.TransitStop, error) {
	return m.nearest(ctx, pos)
}

type mockRouteRepo struct {
	create    func(ctx context.Context, r domain.PlannedRoute) (domain.PlannedRoute, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.PlannedRoute, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.PlannedRoute, int64, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, r domain.PlannedRoute) (domain.PlannedRoute, error) {
	return m.create(ctx, r)
}
func (m *mockRouteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PlannedRoute, error) {
	return m.getByID(ctx, id)
}
func (m *mockRouteRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlannedRoute, int64, error) {
	return m.listPaged(ctx, p)
}

type mockClassifier struct {
	classify func(ctx context.Context, name, description string) (bool, error)
}

func (m *mockClassifier) Classify(ctx context.Context, name, description string) (bool, error) {
	return m.classify(ctx, name, description)
}

// compile-time checks: mocks must satisfy the interfaces they stand in for.
var (
	_ repo.TrailheadRepo       = (*mockTrailheadRepo)(nil)
	_ repo.TrailRepo           = (*mockTrailRepo)(nil)
	_ repo.TransitStopRepo     = (*mockTransitStopRepo)(nil)
	_ repo.RouteRepo           = (*mockRouteRepo)(nil)
	_ service.ScenicClassifier = (*mockClassifier)(nil)
)

// ---- fixture ---------------------------------------------------------------

// posAtKmNorth returns a position the given number of kilometers due north
// of base. Along a meridian the haversine distance is exact, which keeps
// the minute arithmetic in these tests predictable.
func posAtKmNorth(base domain.Position, km float64) domain.Position {
	return domain.Position{Lat: base.Lat + km/6371.0*180/math.Pi, Lng: base.Lng}
}

// plannerFixture wires a PlannerService over mock repos describing one
// trailhead 70 km of transit away from the origin: one-way transit at the
// standard 40 km/h takes 105 minutes, so the round trip is 210.
type plannerFixture struct {
	origin      domain.Position
	trailheadID uuid.UUID
	trails      []domain.Trail
	created     []domain.PlannedRoute
}

func newPlannerFixture() *plannerFixture {
	return &plannerFixture{
		origin:      domain.Position{Lat: 37.775, Lng: -122.419},
		trailheadID: uuid.New(),
		trails: []domain.Trail{
			{ID: uuid.New(), Name: "Creekside Loop", EstimatedMinutes: 45},
			{ID: uuid.New(), Name: "Ridge Traverse", EstimatedMinutes: 75},
			{ID: uuid.New(), Name: "Summit Push", EstimatedMinutes: 120},
		},
	}
}

func (f *plannerFixture) planner(classifier service.ScenicClassifier) *service.PlannerService {
	originStop := domain.TransitStop{ID: uuid.New(), Name: "Origin Plaza", Position: f.origin}
	destStopPos := posAtKmNorth(f.origin, 70)
	destStop := domain.TransitStop{ID: uuid.New(), Name: "Trailhead Gate", Position: destStopPos}

	trailIDs := make([]uuid.UUID, len(f.trails))
	for i, t := range f.trails {
		trailIDs[i] = t.ID
	}

	trailheads := &mockTrailheadRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trailhead, error) {
			if id != f.trailheadID {
				return domain.Trailhead{}, domain.ErrNotFound
			}
			return domain.Trailhead{
				ID:                 f.trailheadID,
				Name:               "North Valley Trailhead",
				Position:           destStopPos,
				ConnectingTrailIDs: trailIDs,
			}, nil
		},
	}
	trails := &mockTrailRepo{
		listByIDs: func(_ context.Context, _ []uuid.UUID) ([]domain.Trail, error) {
			return append([]domain.Trail(nil), f.trails...), nil
		},
	}
	stops := &mockTransitStopRepo{
		nearest: func(_ context.Context, pos domain.Position) (domain.TransitStop, error) {
			if pos == f.origin {
				return originStop, nil
			}
			return destStop, nil
		},
	}
	routes := &mockRouteRepo{
		create: func(_ context.Context, r domain.PlannedRoute) (domain.PlannedRoute, error) {
			f.created = append(f.created, r)
			return r, nil
		},
	}

	return service.NewPlannerService(trailheads, trails, stops, routes, classifier)
}

func (f *plannerFixture) request(maxMinutes int, criteria domain.Criteria) service.PlanRequest {
	return service.PlanRequest{
		Origin:      f.origin,
		TrailheadID: f.trailheadID,
		Constraints: domain.Constraints{MaxTravelMinutes: maxMinutes},
		Criteria:    criteria,
	}
}

// ---- Plan tests ------------------------------------------------------------

func TestPlannerService_Plan_DefaultPicksLongestFitting(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	// 300-minute budget minus a 210-minute round trip leaves 90 minutes of
	// hiking: the 120-minute trail no longer fits, so default picks the
	// 75-minute one.
	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaDefault))

	require.NoError(t, err)
	assert.Equal(t, 210, got.TransitMinutes)
	assert.Equal(t, 75, got.HikingMinutes)
	assert.Equal(t, 285, got.TotalMinutes)
	assert.Equal(t, got.TransitMinutes+got.HikingMinutes, got.TotalMinutes)
	assert.LessOrEqual(t, got.TotalMinutes, got.Constraints.MaxTravelMinutes)
	require.Len(t, f.created, 1, "plan must persist exactly one new route")
}

func TestPlannerService_Plan_ShorterPicksShortest(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaShorter))

	require.NoError(t, err)
	assert.Equal(t, 45, got.HikingMinutes)
}

func TestPlannerService_Plan_FasterUsesExpressSpeed(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	// At 60 km/h the 70 km leg takes 70 minutes each way: the round trip
	// drops to 140, the hiking budget grows to 160, and the 120-minute
	// trail fits.
	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaFaster))

	require.NoError(t, err)
	assert.Equal(t, 140, got.TransitMinutes)
	assert.Equal(t, 120, got.HikingMinutes)
}

func TestPlannerService_Plan_SegmentsAssembled(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaDefault))

	require.NoError(t, err)
	require.Len(t, got.TransitSegments, 2)
	require.Len(t, got.HikingSegments, 1)
	outbound, ret := got.TransitSegments[0], got.TransitSegments[1]
	assert.Equal(t, outbound.FromStopID, ret.ToStopID)
	assert.Equal(t, outbound.ToStopID, ret.FromStopID)
	assert.Equal(t, 105, outbound.Minutes)
	assert.Equal(t, 105, ret.Minutes)
}

func TestPlannerService_Plan_InvalidOrigin(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	req := f.request(300, domain.CriteriaDefault)
	req.Origin.Lat = 91

	_, err := svc.Plan(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlannerService_Plan_NonPositiveBudget(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	_, err := svc.Plan(context.Background(), f.request(0, domain.CriteriaDefault))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlannerService_Plan_UnknownCriteria(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	_, err := svc.Plan(context.Background(), f.request(300, domain.Criteria("cheapest")))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlannerService_Plan_TrailheadNotFound(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	req := f.request(300, domain.CriteriaDefault)
	req.TrailheadID = uuid.New()

	_, err := svc.Plan(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlannerService_Plan_NoTransitStops(t *testing.T) {
	f := newPlannerFixture()
	svc := service.NewPlannerService(
		&mockTrailheadRepo{getByID: func(_ context.Context, _ uuid.UUID) (domain.Trailhead, error) {
			return domain.Trailhead{ID: f.trailheadID, Position: f.origin}, nil
		}},
		&mockTrailRepo{},
		&mockTransitStopRepo{nearest: func(_ context.Context, _ domain.Position) (domain.TransitStop, error) {
			return domain.TransitStop{}, domain.ErrNotFound
		}},
		&mockRouteRepo{},
		nil,
	)

	_, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaDefault))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlannerService_Plan_BudgetBelowRoundTrip(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	// The round trip alone takes 210 minutes.
	_, err := svc.Plan(context.Background(), f.request(200, domain.CriteriaDefault))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "insufficient time")
}

func TestPlannerService_Plan_NoCandidateTrail(t *testing.T) {
	f := newPlannerFixture()
	f.trails = []domain.Trail{
		{ID: uuid.New(), Name: "Summit Push", EstimatedMinutes: 120},
	}
	svc := f.planner(nil)

	// Budget 90 < 120: nothing fits.
	_, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaDefault))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "no suitable trail")
}

func TestPlannerService_Plan_TiesBrokenByName(t *testing.T) {
	f := newPlannerFixture()
	f.trails = []domain.Trail{
		{ID: uuid.New(), Name: "Zig Zag", EstimatedMinutes: 75},
		{ID: uuid.New(), Name: "Aspen Way", EstimatedMinutes: 75},
	}
	svc := f.planner(nil)

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaDefault))

	require.NoError(t, err)
	// Equal durations: the name-ascending pre-sort makes "Aspen Way" win.
	assert.Equal(t, f.trails[1].ID, got.HikingSegments[0].TrailID)
}

func TestPlannerService_Plan_ScenicPrefersClassifiedTrail(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(&mockClassifier{
		classify: func(_ context.Context, name, _ string) (bool, error) {
			return name == "Creekside Loop", nil
		},
	})

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaScenic))

	require.NoError(t, err)
	// Only the 45-minute trail is scenic, so it beats the longer candidates.
	assert.Equal(t, 45, got.HikingMinutes)
}

func TestPlannerService_Plan_ScenicFallsBackWithoutClassifier(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(nil)

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaScenic))

	require.NoError(t, err)
	assert.Equal(t, 75, got.HikingMinutes)
}

func TestPlannerService_Plan_ScenicFallsBackWhenNothingScenic(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(&mockClassifier{
		classify: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
	})

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaScenic))

	require.NoError(t, err)
	assert.Equal(t, 75, got.HikingMinutes)
}

func TestPlannerService_Plan_ScenicSurvivesClassifierFailure(t *testing.T) {
	f := newPlannerFixture()
	svc := f.planner(&mockClassifier{
		classify: func(_ context.Context, _, _ string) (bool, error) {
			return false, errors.New("model unavailable")
		},
	})

	got, err := svc.Plan(context.Background(), f.request(300, domain.CriteriaScenic))

	require.NoError(t, err)
	assert.Equal(t, 75, got.HikingMinutes)
}

func TestPlannerService_Plan_BudgetInvariantHoldsAcrossCriteria(t *testing.T) {
	for _, criteria := range []domain.Criteria{
		domain.CriteriaDefault, domain.CriteriaFaster, domain.CriteriaShorter, domain.CriteriaScenic,
	} {
		t.Run(string(criteria), func(t *testing.T) {
			f := newPlannerFixture()
			svc := f.planner(nil)

			got, err := svc.Plan(context.Background(), f.request(300, criteria))

			require.NoError(t, err)
			assert.Equal(t, got.TransitMinutes+got.HikingMinutes, got.TotalMinutes)
			assert.LessOrEqual(t, got.TotalMinutes, 300)
		})
	}
}

// validStart is shared by the hike lifecycle tests.
func timePtr(t time.Time) *time.Time { return &t }
