// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/pdf-qa-gen/frontend/internal/selector"
)

// Controller is the part of the upload controller the handlers drive.
// This allows mocking in tests
type Controller interface {
	Submit(ctx context.Context, f selector.File) (<-chan struct{}, error)
	Reset() models.Snapshot
	Snapshot() models.Snapshot
	Progress() models.Progress
	Subscribe() (<-chan models.Snapshot, func())
}

// UploadHandler handles file selection and submission
type UploadHandler interface {
	HandleUpload(c echo.Context) error
	HandleReset(c echo.Context) error
}

// StateHandler exposes the controller state to the UI
type StateHandler interface {
	HandleState(c echo.Context) error
	HandleProgress(c echo.Context) error
}

// ExportHandler serves questions.json
type ExportHandler interface {
	HandleExport(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
