// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Backend      string `json:"backend"`
	UploadState  string `json:"uploadState"`
	SubmissionID string `json:"submissionId,omitempty"`
	Uptime       string `json:"uptime"`
}

type healthHandler struct {
	version    string
	backend    string
	controller Controller
	started    time.Time
}

// NewHealthHandler reports liveness together with where the controller is.
func NewHealthHandler(version, backend string, controller Controller) HealthHandler {
	return &healthHandler{
		version:    version,
		backend:    backend,
		controller: controller,
		started:    time.Now(),
	}
}

func (h *healthHandler) HandleHealth(c echo.Context) error {
	snap := h.controller.Snapshot()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      h.version,
		Backend:      h.backend,
		UploadState:  string(snap.Status),
		SubmissionID: snap.SubmissionID,
		Uptime:       time.Since(h.started).Truncate(time.Second).String(),
	})
}
