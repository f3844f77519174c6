package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status           string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Books            int                        `json:"books" doc:"Records in the catalog"`
	PendingConflicts int                        `json:"pending_conflicts" doc:"Conflicts awaiting confirmation"`
	Components       map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)

	if s.services == nil || s.services.Catalog == nil {
		components["storage"] = ComponentHealth{
			Status:  "degraded",
			Message: "catalog not configured",
		}
		return &HealthOutput{Body: HealthResponse{Status: "degraded", Components: components}}, nil
	}

	start := time.Now()
	h := s.services.Catalog.Health(ctx)
	latency := time.Since(start)

	overall := "healthy"
	storage := ComponentHealth{Status: "healthy", Latency: latency.String()}
	if h.StorageErr != nil {
		overall = "unhealthy"
		storage.Status = "unhealthy"
		storage.Message = "storage unreachable"
		s.logger.Warn("health check storage ping failed", "error", h.StorageErr)
	}
	components["storage"] = storage

	components["conflicts"] = ComponentHealth{
		Status:  "healthy",
		Message: formatPending(h.PendingConflicts),
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:           overall,
			Books:            h.Books,
			PendingConflicts: h.PendingConflicts,
			Components:       components,
		},
	}, nil
}

func formatPending(count int) string {
	switch count {
	case 0:
		return "no pending conflicts"
	case 1:
		return "1 pending conflict"
	default:
		return fmt.Sprintf("%d pending conflicts", count)
	}
}
