// Package handler — export.go implements GET /export.
// Returns a user's completed hikes as a flat table, one row per hike with
// the planned-route fields repeated. Supports content negotiation via
// ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/ldevries/trailhop/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"completed_hike_id", "user_id", "ended_at", "duration_minutes",
	"exit_point_id", "route_id", "trailhead_id",
	"total_minutes", "transit_minutes", "hiking_minutes", "criteria",
}

type exportRowResponse struct {
	CompletedHikeID string    `json:"completed_hike_id"`
	UserID          string    `json:"user_id"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ExitPointID     string    `json:"exit_point_id"`
	RouteID         string    `json:"route_id"`
	TrailheadID     string    `json:"trailhead_id"`
	TotalMinutes    int       `json:"total_minutes"`
	TransitMinutes  int       `json:"transit_minutes"`
	HikingMinutes   int       `json:"hiking_minutes"`
	Criteria        string    `json:"criteria"`
}

// getExport handles GET /export?user_id=.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Export.Export(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSVExport(w, rows)
		return
	}

	out := make([]exportRowResponse, len(rows))
	for i, row := range rows {
		out[i] = exportRowResponse{
			CompletedHikeID: row.CompletedHikeID,
			UserID:          row.UserID,
			EndedAt:         row.EndedAt,
			DurationMinutes: row.DurationMinutes,
			ExitPointID:     row.ExitPointID,
			RouteID:         row.RouteID,
			TrailheadID:     row.TrailheadID,
			TotalMinutes:    row.TotalMinutes,
			TransitMinutes:  row.TransitMinutes,
			HikingMinutes:   row.HikingMinutes,
			Criteria:        row.Criteria,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSVExport encodes the rows as CSV, header first.
func writeCSVExport(w http.ResponseWriter, rows []domain.HikeExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write([]string{
			r.CompletedHikeID,
			r.UserID,
			r.EndedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(r.DurationMinutes),
			r.ExitPointID,
			r.RouteID,
			r.TrailheadID,
			strconv.Itoa(r.TotalMinutes),
			strconv.Itoa(r.TransitMinutes),
			strconv.Itoa(r.HikingMinutes),
			r.Criteria,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
