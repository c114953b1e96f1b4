// Package handler implements the HTTP handlers for the TrailHop API.
// All handlers are methods on Server and are split into domain-specific files
// (route.go, hike.go, etc.), but share the same Server struct so they can
// access its dependencies. Handlers translate JSON to domain calls and map
// sentinel errors to status codes; no business logic lives here.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/service"
)

// PlanServicer defines the planner operation the route handler depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type PlanServicer interface {
	Plan(ctx context.Context, req service.PlanRequest) (domain.PlannedRoute, error)
}

// AlternativeServicer defines the replanning operations for existing routes.
type AlternativeServicer interface {
	Alternative(ctx context.Context, routeID uuid.UUID, criteria domain.Criteria) (*domain.PlannedRoute, error)
	UpdateConstraints(ctx context.Context, routeID uuid.UUID, constraints domain.Constraints) (*domain.PlannedRoute, error)
}

// RouteReader defines the read operations over stored routes.
type RouteReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.PlannedRoute, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlannedRoute, int64, error)
}

// HikeServicer defines the hike lifecycle operations.
type HikeServicer interface {
	Start(ctx context.Context, req service.StartHikeRequest) (domain.ActiveHike, error)
	UpdateLocation(ctx context.Context, hikeID uuid.UUID, pos domain.Position, at *time.Time) error
	End(ctx context.Context, hikeID, exitPointID uuid.UUID, endTime *time.Time) (domain.CompletedHike, error)
	ExitStrategies(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error)
}

// ExportServicer defines the hike-history export operation.
type ExportServicer interface {
	Export(ctx context.Context, userID string) ([]domain.HikeExportRow, error)
}

// Reference-data creators, satisfied by the corresponding repos.
type (
	StopCreator interface {
		Create(ctx context.Context, stop domain.TransitStop) (domain.TransitStop, error)
	}
	TrailheadCreator interface {
		Create(ctx context.Context, th domain.Trailhead) (domain.Trailhead, error)
	}
	TrailCreator interface {
		Create(ctx context.Context, trail domain.Trail) (domain.Trail, error)
	}
	ExitPointCreator interface {
		Create(ctx context.Context, ep domain.ExitPoint) (domain.ExitPoint, error)
	}
)

// Deps bundles everything a Server needs. A struct keeps the constructor
// readable as the dependency list grows.
type Deps struct {
	Planner      PlanServicer
	Alternatives AlternativeServicer
	Routes       RouteReader
	Hikes        HikeServicer
	Export       ExportServicer

	Stops      StopCreator
	Trailheads TrailheadCreator
	Trails     TrailCreator
	ExitPoints ExitPointCreator
}

// Server holds the handler dependencies. Methods are in domain-specific
// files but all operate on this struct.
type Server struct {
	deps Deps
}

// NewServer constructs the Server with all its dependencies.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// Routes builds the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/routes", func(r chi.Router) {
		r.Post("/", s.planRoute)
		r.Get("/", s.listRoutes)
		r.Get("/{id}", s.getRoute)
		r.Post("/{id}/alternative", s.planAlternative)
		r.Put("/{id}/constraints", s.updateConstraints)
	})

	r.Route("/hikes", func(r chi.Router) {
		r.Post("/", s.startHike)
		r.Post("/{id}/location", s.updateLocation)
		r.Get("/{id}/strategies", s.listStrategies)
		r.Post("/{id}/end", s.endHike)
	})

	r.Post("/stops", s.createStop)
	r.Post("/trailheads", s.createTrailhead)
	r.Post("/trails", s.createTrail)
	r.Post("/exit-points", s.createExitPoint)

	r.Get("/export", s.getExport)

	return r
}

// parseIDParam reads the {id} URL parameter as a UUID.
func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// parseUUIDField parses a UUID carried in a JSON body field, naming the field
// in the error so the client knows what to fix.
func parseUUIDField(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid uuid", field)
	}
	return id, nil
}
