package repo_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/repo"
)

// mustCreateTrailhead inserts a trailhead (routes reference one) and fails
// the test if the insert does not succeed.
func mustCreateTrailhead(t *testing.T, r repo.TrailheadRepo) domain.Trailhead {
	t.Helper()
	th, err := r.Create(context.Background(), domain.Trailhead{
		Name:     "North Gate",
		Position: domain.Position{Lat: 38.40, Lng: -122.419},
	})
	require.NoError(t, err, "create trailhead")
	return th
}

func routeFixture(trailheadID uuid.UUID) domain.PlannedRoute {
	originStop, destStop, trail := uuid.New(), uuid.New(), uuid.New()
	return domain.PlannedRoute{
		Origin:                 domain.Position{Lat: 37.775, Lng: -122.419},
		DestinationTrailheadID: trailheadID,
		TransitSegments: []domain.TransitSegment{
			{FromStopID: originStop, ToStopID: destStop, Minutes: 105},
			{FromStopID: destStop, ToStopID: originStop, Minutes: 105},
		},
		HikingSegments: []domain.HikingSegment{{TrailID: trail, Minutes: 75}},
		TotalMinutes:   285,
		TransitMinutes: 210,
		HikingMinutes:  75,
		Criteria:       domain.CriteriaDefault,
		Constraints:    domain.Constraints{MaxTravelMinutes: 300},
	}
}

func TestRouteRepo_CreateAndGet(t *testing.T) {
	tx := newTestTx(t)
	routes := repo.NewRouteRepo(tx)
	ctx := context.Background()

	th := mustCreateTrailhead(t, repo.NewTrailheadRepo(tx))
	input := routeFixture(th.ID)

	created, err := routes.Create(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, created.ID)
	assert.False(t, created.CreatedAt.IsZero(), "created_at should be set by DB")

	got, err := routes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, input.TransitSegments, got.TransitSegments, "segments survive the jsonb round trip")
	assert.Equal(t, input.HikingSegments, got.HikingSegments)
	assert.Equal(t, input.TotalMinutes, got.TotalMinutes)
	assert.Equal(t, input.Criteria, got.Criteria)
	assert.Equal(t, input.Constraints, got.Constraints)
	assert.InDelta(t, input.Origin.Lat, got.Origin.Lat, 1e-6)
	assert.InDelta(t, input.Origin.Lng, got.Origin.Lng, 1e-6)
}

func TestRouteRepo_GetByID_NotFound(t *testing.T) {
	routes := repo.NewRouteRepo(newTestTx(t))

	_, err := routes.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRouteRepo_ListPaged(t *testing.T) {
	tx := newTestTx(t)
	routes := repo.NewRouteRepo(tx)
	ctx := context.Background()

	th := mustCreateTrailhead(t, repo.NewTrailheadRepo(tx))
	for i := 0; i < 3; i++ {
		_, err := routes.Create(ctx, routeFixture(th.ID))
		require.NoError(t, err)
	}

	page, total, err := routes.ListPaged(ctx, domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	page, total, err = routes.ListPaged(ctx, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)
}

// The pgxmock tests below cover the error mapping without needing a database.

func TestRouteRepo_GetByID_MapsNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM planned_routes`).WillReturnError(pgx.ErrNoRows)

	routes := repo.NewRouteRepo(mock)
	_, err = routes.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
