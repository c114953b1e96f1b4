// Package handler — reference.go implements the reference-data seeding
// endpoints. Transit stops, trailheads, trails, and exit points are operator
// data: loaded up front, read by the planner and the exit strategy engine.
package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
)

type createStopRequest struct {
	Name         string          `json:"name"`
	Position     domain.Position `json:"position"`
	ServedRoutes []string        `json:"served_routes,omitempty"`
}

type createTrailheadRequest struct {
	Name               string          `json:"name"`
	Position           domain.Position `json:"position"`
	ConnectingTrailIDs []string        `json:"connecting_trail_ids,omitempty"`
}

type createTrailRequest struct {
	Name             string `json:"name"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Description      string `json:"description,omitempty"`
}

type createExitPointRequest struct {
	Name              string          `json:"name"`
	Position          domain.Position `json:"position"`
	AccessibilityTags []string        `json:"accessibility_tags,omitempty"`
	TransitStopIDs    []string        `json:"transit_stop_ids,omitempty"`
}

// createStop handles POST /stops.
func (s *Server) createStop(w http.ResponseWriter, r *http.Request) {
	var body createStopRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	if body.Name == "" {
		writeRequestError(w, "name is required")
		return
	}
	if err := body.Position.Validate(); err != nil {
		writeError(w, err)
		return
	}

	stop, err := s.deps.Stops.Create(r.Context(), domain.TransitStop{
		Name:         body.Name,
		Position:     body.Position,
		ServedRoutes: body.ServedRoutes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": stop.ID.String()})
}

// createTrailhead handles POST /trailheads.
func (s *Server) createTrailhead(w http.ResponseWriter, r *http.Request) {
	var body createTrailheadRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	if body.Name == "" {
		writeRequestError(w, "name is required")
		return
	}
	if err := body.Position.Validate(); err != nil {
		writeError(w, err)
		return
	}
	trailIDs, err := parseUUIDList(body.ConnectingTrailIDs, "connecting_trail_ids")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	th, err := s.deps.Trailheads.Create(r.Context(), domain.Trailhead{
		Name:               body.Name,
		Position:           body.Position,
		ConnectingTrailIDs: trailIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": th.ID.String()})
}

// createTrail handles POST /trails.
func (s *Server) createTrail(w http.ResponseWriter, r *http.Request) {
	var body createTrailRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	if body.Name == "" {
		writeRequestError(w, "name is required")
		return
	}
	if body.EstimatedMinutes <= 0 {
		writeRequestError(w, "estimated_minutes must be positive")
		return
	}

	trail, err := s.deps.Trails.Create(r.Context(), domain.Trail{
		Name:             body.Name,
		EstimatedMinutes: body.EstimatedMinutes,
		Description:      body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": trail.ID.String()})
}

// createExitPoint handles POST /exit-points.
func (s *Server) createExitPoint(w http.ResponseWriter, r *http.Request) {
	var body createExitPointRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	if body.Name == "" {
		writeRequestError(w, "name is required")
		return
	}
	if err := body.Position.Validate(); err != nil {
		writeError(w, err)
		return
	}
	stopIDs, err := parseUUIDList(body.TransitStopIDs, "transit_stop_ids")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	ep, err := s.deps.ExitPoints.Create(r.Context(), domain.ExitPoint{
		Name:              body.Name,
		Position:          body.Position,
		AccessibilityTags: body.AccessibilityTags,
		TransitStopIDs:    stopIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": ep.ID.String()})
}

// parseUUIDList parses every element of raw, naming the field on failure.
func parseUUIDList(raw []string, field string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, len(raw))
	for i, r := range raw {
		id, err := parseUUIDField(r, field)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
