package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/repo"
)

func exitPointFixture(name string, lat, lng float64) domain.ExitPoint {
	return domain.ExitPoint{
		Name:              name,
		Position:          domain.Position{Lat: lat, Lng: lng},
		AccessibilityTags: []string{"paved", "wheelchair"},
	}
}

func TestExitPointRepo_CreateAndGet(t *testing.T) {
	r := repo.NewExitPointRepo(newTestTx(t))
	ctx := context.Background()

	stopID := uuid.New()
	input := exitPointFixture("Ranger Station", 38.41, -122.42)
	input.TransitStopIDs = []uuid.UUID{stopID}

	created, err := r.Create(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, created.ID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.AccessibilityTags, got.AccessibilityTags)
	assert.Equal(t, []uuid.UUID{stopID}, got.TransitStopIDs)
}

func TestExitPointRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewExitPointRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExitPointRepo_NearestWithin(t *testing.T) {
	r := repo.NewExitPointRepo(newTestTx(t))
	ctx := context.Background()

	// Roughly 1 km and 5 km north of the query point; the third is ~100 km
	// away and must fall outside the 20 km radius.
	center := domain.Position{Lat: 38.40, Lng: -122.419}
	near, err := r.Create(ctx, exitPointFixture("Near Gate", 38.409, -122.419))
	require.NoError(t, err)
	mid, err := r.Create(ctx, exitPointFixture("Mid Gate", 38.445, -122.419))
	require.NoError(t, err)
	_, err = r.Create(ctx, exitPointFixture("Far Gate", 39.30, -122.419))
	require.NoError(t, err)

	got, err := r.NearestWithin(ctx, center, 20, 10)

	require.NoError(t, err)
	require.Len(t, got, 2, "points beyond the radius are excluded")
	assert.Equal(t, near.ID, got[0].ID, "nearest first")
	assert.Equal(t, mid.ID, got[1].ID)
}

func TestExitPointRepo_NearestWithin_Limit(t *testing.T) {
	r := repo.NewExitPointRepo(newTestTx(t))
	ctx := context.Background()

	center := domain.Position{Lat: 38.40, Lng: -122.419}
	for i := 0; i < 4; i++ {
		_, err := r.Create(ctx, exitPointFixture("Gate", 38.401+float64(i)*0.002, -122.419))
		require.NoError(t, err)
	}

	got, err := r.NearestWithin(ctx, center, 20, 2)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestExitStrategyRepo_ReplaceAndList(t *testing.T) {
	tx := newTestTx(t)
	f := newHikeFixtures(t, tx)
	strategies := repo.NewExitStrategyRepo(tx)
	ctx := context.Background()

	hike, err := f.hikes.Create(ctx, f.hike("hiker-42"))
	require.NoError(t, err)

	exitB, err := repo.NewExitPointRepo(tx).Create(ctx, exitPointFixture("Back Gate", 38.42, -122.43))
	require.NoError(t, err)

	computedAt := time.Date(2025, 7, 12, 10, 30, 0, 0, time.UTC)
	highScore, lowScore := 0.8, 0.2
	first := []domain.ExitStrategy{
		{ExitPointID: f.exitID, OnFootMinutes: 10, TransitMinutes: 10, ETAMinutes: 20, Score: &lowScore, ComputedAt: computedAt},
		{ExitPointID: exitB.ID, OnFootMinutes: 25, TransitMinutes: 0, ETAMinutes: 25, Score: &highScore, ComputedAt: computedAt},
	}
	require.NoError(t, strategies.ReplaceForHike(ctx, hike.ID, first))

	got, err := strategies.ListByHike(ctx, hike.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, exitB.ID, got[0].ExitPointID, "higher score first despite longer eta")
	assert.Equal(t, f.exitID, got[1].ExitPointID)
	assert.Equal(t, hike.ID, got[0].ActiveHikeID)
	assert.True(t, got[0].ComputedAt.Equal(computedAt))

	// A second replace discards the first set entirely; an unscored strategy
	// ranks below a scored one.
	second := []domain.ExitStrategy{
		{ExitPointID: f.exitID, OnFootMinutes: 5, TransitMinutes: 0, ETAMinutes: 5, ComputedAt: computedAt.Add(time.Minute)},
		{ExitPointID: exitB.ID, OnFootMinutes: 30, TransitMinutes: 10, ETAMinutes: 40, Score: &lowScore, ComputedAt: computedAt.Add(time.Minute)},
	}
	require.NoError(t, strategies.ReplaceForHike(ctx, hike.ID, second))

	got, err = strategies.ListByHike(ctx, hike.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, exitB.ID, got[0].ExitPointID)
	require.NotNil(t, got[0].Score)
	assert.Equal(t, lowScore, *got[0].Score)
	assert.Nil(t, got[1].Score)
}

func TestExitStrategyRepo_ReplaceWithEmptyBatch(t *testing.T) {
	tx := newTestTx(t)
	f := newHikeFixtures(t, tx)
	strategies := repo.NewExitStrategyRepo(tx)
	ctx := context.Background()

	hike, err := f.hikes.Create(ctx, f.hike("hiker-42"))
	require.NoError(t, err)

	seed := []domain.ExitStrategy{
		{ExitPointID: f.exitID, OnFootMinutes: 10, TransitMinutes: 0, ETAMinutes: 10, ComputedAt: time.Now()},
	}
	require.NoError(t, strategies.ReplaceForHike(ctx, hike.ID, seed))
	require.NoError(t, strategies.ReplaceForHike(ctx, hike.ID, nil))

	got, err := strategies.ListByHike(ctx, hike.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// The pgxmock tests below verify the transaction shape of the swap.

func TestExitStrategyRepo_ReplaceForHike_SwapsInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM exit_strategies`).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO exit_strategies`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO exit_strategies`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	strategies := repo.NewExitStrategyRepo(mock)
	batch := []domain.ExitStrategy{
		{ExitPointID: uuid.New(), OnFootMinutes: 10, ETAMinutes: 10, ComputedAt: time.Now()},
		{ExitPointID: uuid.New(), OnFootMinutes: 20, ETAMinutes: 20, ComputedAt: time.Now()},
	}
	err = strategies.ReplaceForHike(context.Background(), uuid.New(), batch)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExitStrategyRepo_ReplaceForHike_RollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("deadlock detected")
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM exit_strategies`).WillReturnError(boom)
	mock.ExpectRollback()

	strategies := repo.NewExitStrategyRepo(mock)
	err = strategies.ReplaceForHike(context.Background(), uuid.New(), nil)

	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
