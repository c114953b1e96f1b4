package handler

import (
	"net/http"
	"time"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/service"
)

type startHikeRequest struct {
	PlannedRouteID string          `json:"planned_route_id"`
	UserID         string          `json:"user_id"`
	Position       domain.Position `json:"position"`
	StartTime      *time.Time      `json:"start_time,omitempty"`
}

type updateLocationRequest struct {
	Position domain.Position `json:"position"`
	At       *time.Time      `json:"at,omitempty"`
}

type endHikeRequest struct {
	ExitPointID string     `json:"exit_point_id"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

type hikeResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	PlannedRouteID  string          `json:"planned_route_id"`
	CurrentPosition domain.Position `json:"current_position"`
	StartedAt       time.Time       `json:"started_at"`
	LastUpdateAt    *time.Time      `json:"last_update_at,omitempty"`
	Status          string          `json:"status"`
}

type completedHikeResponse struct {
	ID              string    `json:"id"`
	ActiveHikeID    string    `json:"active_hike_id"`
	UserID          string    `json:"user_id"`
	PlannedRouteID  string    `json:"planned_route_id"`
	EndedAt         time.Time `json:"ended_at"`
	ExitPointID     string    `json:"exit_point_id"`
	DurationMinutes int       `json:"duration_minutes"`
}

type strategyResponse struct {
	ID             string    `json:"id"`
	ExitPointID    string    `json:"exit_point_id"`
	OnFootMinutes  int       `json:"on_foot_minutes"`
	TransitMinutes int       `json:"transit_minutes"`
	ETAMinutes     int       `json:"eta_minutes"`
	Score          *float64  `json:"score,omitempty"`
	ComputedAt     time.Time `json:"computed_at"`
}

// startHike handles POST /hikes.
func (s *Server) startHike(w http.ResponseWriter, r *http.Request) {
	var body startHikeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	routeID, err := parseUUIDField(body.PlannedRouteID, "planned_route_id")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	hike, err := s.deps.Hikes.Start(r.Context(), service.StartHikeRequest{
		PlannedRouteID: routeID,
		UserID:         body.UserID,
		Position:       body.Position,
		StartTime:      body.StartTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, hikeToResponse(hike))
}

// updateLocation handles POST /hikes/{id}/location.
func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}
	var body updateLocationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}

	if err := s.deps.Hikes.UpdateLocation(r.Context(), id, body.Position, body.At); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listStrategies handles GET /hikes/{id}/strategies.
// Strategies always reflect the hike's latest reported position, ranked best
// first.
func (s *Server) listStrategies(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}

	strategies, err := s.deps.Hikes.ExitStrategies(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	data := make([]strategyResponse, len(strategies))
	for i, st := range strategies {
		data[i] = strategyResponse{
			ID:             st.ID.String(),
			ExitPointID:    st.ExitPointID.String(),
			OnFootMinutes:  st.OnFootMinutes,
			TransitMinutes: st.TransitMinutes,
			ETAMinutes:     st.ETAMinutes,
			Score:          st.Score,
			ComputedAt:     st.ComputedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string][]strategyResponse{"data": data})
}

// endHike handles POST /hikes/{id}/end.
func (s *Server) endHike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}
	var body endHikeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	exitPointID, err := parseUUIDField(body.ExitPointID, "exit_point_id")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	completed, err := s.deps.Hikes.End(r.Context(), id, exitPointID, body.EndTime)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completedHikeResponse{
		ID:              completed.ID.String(),
		ActiveHikeID:    completed.ActiveHikeID.String(),
		UserID:          completed.UserID,
		PlannedRouteID:  completed.PlannedRouteID.String(),
		EndedAt:         completed.EndedAt,
		ExitPointID:     completed.ExitPointID.String(),
		DurationMinutes: completed.DurationMinutes,
	})
}

func hikeToResponse(h domain.ActiveHike) hikeResponse {
	return hikeResponse{
		ID:              h.ID.String(),
		UserID:          h.UserID,
		PlannedRouteID:  h.PlannedRouteID.String(),
		CurrentPosition: h.CurrentPosition,
		StartedAt:       h.StartedAt,
		LastUpdateAt:    h.LastUpdateAt,
		Status:          string(h.Status),
	}
}
