package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/service"
)

type planRouteRequest struct {
	Origin           domain.Position `json:"origin"`
	TrailheadID      string          `json:"trailhead_id"`
	MaxTravelMinutes int             `json:"max_travel_minutes"`
	Criteria         string          `json:"criteria"`
}

type alternativeRequest struct {
	Criteria string `json:"criteria"`
}

type constraintsRequest struct {
	MaxTravelMinutes int `json:"max_travel_minutes"`
}

type routeResponse struct {
	ID                     string                  `json:"id"`
	Origin                 domain.Position         `json:"origin"`
	DestinationTrailheadID string                  `json:"destination_trailhead_id"`
	TransitSegments        []domain.TransitSegment `json:"transit_segments"`
	HikingSegments         []domain.HikingSegment  `json:"hiking_segments"`
	TotalMinutes           int                     `json:"total_minutes"`
	TransitMinutes         int                     `json:"transit_minutes"`
	HikingMinutes          int                     `json:"hiking_minutes"`
	Criteria               string                  `json:"criteria"`
	MaxTravelMinutes       int                     `json:"max_travel_minutes"`
	CreatedAt              time.Time               `json:"created_at"`
}

type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type routeListResponse struct {
	Data       []routeResponse    `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// planRoute handles POST /routes.
func (s *Server) planRoute(w http.ResponseWriter, r *http.Request) {
	var body planRouteRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}
	trailheadID, err := parseUUIDField(body.TrailheadID, "trailhead_id")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	route, err := s.deps.Planner.Plan(r.Context(), service.PlanRequest{
		Origin:      body.Origin,
		TrailheadID: trailheadID,
		Constraints: domain.Constraints{MaxTravelMinutes: body.MaxTravelMinutes},
		Criteria:    domain.Criteria(body.Criteria),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, routeToResponse(route))
}

// listRoutes handles GET /routes.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	routes, total, err := s.deps.Routes.ListPaged(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	data := make([]routeResponse, len(routes))
	for i, rt := range routes {
		data[i] = routeToResponse(rt)
	}
	writeJSON(w, http.StatusOK, routeListResponse{
		Data: data,
		Pagination: paginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// getRoute handles GET /routes/{id}.
func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}

	route, err := s.deps.Routes.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, routeToResponse(route))
}

// planAlternative handles POST /routes/{id}/alternative.
// 201 carries the alternative route; 204 means no meaningfully different
// alternative exists under the requested criteria — a valid outcome, not an
// error.
func (s *Server) planAlternative(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}
	var body alternativeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}

	alt, err := s.deps.Alternatives.Alternative(r.Context(), id, domain.Criteria(body.Criteria))
	if err != nil {
		writeError(w, err)
		return
	}
	if alt == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, routeToResponse(*alt))
}

// updateConstraints handles PUT /routes/{id}/constraints.
// The stored route is never modified; a feasible replan creates a new route
// (201). 204 means the new budget is infeasible.
func (s *Server) updateConstraints(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeRequestError(w, "id must be a valid uuid")
		return
	}
	var body constraintsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, "malformed request body: "+err.Error())
		return
	}

	replanned, err := s.deps.Alternatives.UpdateConstraints(r.Context(), id,
		domain.Constraints{MaxTravelMinutes: body.MaxTravelMinutes})
	if err != nil {
		writeError(w, err)
		return
	}
	if replanned == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, routeToResponse(*replanned))
}

// --- mapping helpers --------------------------------------------------------

func routeToResponse(rt domain.PlannedRoute) routeResponse {
	return routeResponse{
		ID:                     rt.ID.String(),
		Origin:                 rt.Origin,
		DestinationTrailheadID: rt.DestinationTrailheadID.String(),
		TransitSegments:        rt.TransitSegments,
		HikingSegments:         rt.HikingSegments,
		TotalMinutes:           rt.TotalMinutes,
		TransitMinutes:         rt.TransitMinutes,
		HikingMinutes:          rt.HikingMinutes,
		Criteria:               string(rt.Criteria),
		MaxTravelMinutes:       rt.Constraints.MaxTravelMinutes,
		CreatedAt:              rt.CreatedAt,
	}
}

// queryInt reads an optional integer query parameter, returning nil when the
// parameter is absent or not a number.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
