package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/handler"
)

type mockExportServicer struct {
	export func(ctx context.Context, userID string) ([]domain.HikeExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID string) ([]domain.HikeExportRow, error) {
	return m.export(ctx, userID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func exportRowFixture() domain.HikeExportRow {
	return domain.HikeExportRow{
		CompletedHikeID: "0c9a7b9e-0000-0000-0000-000000000001",
		UserID:          "hiker-42",
		EndedAt:         time.Date(2025, 7, 12, 12, 5, 0, 0, time.UTC),
		DurationMinutes: 185,
		ExitPointID:     "0c9a7b9e-0000-0000-0000-000000000002",
		RouteID:         "0c9a7b9e-0000-0000-0000-000000000003",
		TrailheadID:     "0c9a7b9e-0000-0000-0000-000000000004",
		TotalMinutes:    285,
		TransitMinutes:  210,
		HikingMinutes:   75,
		Criteria:        "default",
	}
}

func TestGetExport_200_JSON(t *testing.T) {
	export := &mockExportServicer{export: func(_ context.Context, userID string) ([]domain.HikeExportRow, error) {
		assert.Equal(t, "hiker-42", userID)
		return []domain.HikeExportRow{exportRowFixture()}, nil
	}}
	h := newHTTPHandler(handler.Deps{Export: export})

	rec := doRequest(t, h, http.MethodGet, "/export?user_id=hiker-42", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 185, rows[0]["duration_minutes"])
	assert.Equal(t, "default", rows[0]["criteria"])
}

func TestGetExport_200_CSV(t *testing.T) {
	export := &mockExportServicer{export: func(_ context.Context, _ string) ([]domain.HikeExportRow, error) {
		return []domain.HikeExportRow{exportRowFixture()}, nil
	}}
	h := newHTTPHandler(handler.Deps{Export: export})

	rec := doRequest(t, h, http.MethodGet, "/export?user_id=hiker-42&format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2, "header plus one data row")
	assert.True(t, strings.HasPrefix(lines[0], "completed_hike_id,user_id,ended_at"))
	assert.Contains(t, lines[1], "hiker-42")
	assert.Contains(t, lines[1], "185")
}

func TestGetExport_422_MissingUserID(t *testing.T) {
	export := &mockExportServicer{export: func(_ context.Context, _ string) ([]domain.HikeExportRow, error) {
		return nil, domain.ErrValidation
	}}
	h := newHTTPHandler(handler.Deps{Export: export})

	rec := doRequest(t, h, http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
