// handlers_export.go - questions.json download
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/export"
	"github.com/pdf-qa-gen/frontend/internal/models"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	controller Controller
}

// NewExportHandler creates a new export handler
func NewExportHandler(controller Controller) ExportHandler {
	return &ExportHandlerImpl{controller: controller}
}

// HandleExport serves the question list as a questions.json attachment.
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	snap := h.controller.Snapshot()
	if snap.Status != models.StateComplete {
		return NewConflictError(fmt.Sprintf("no questions to export in state %s", snap.Status))
	}

	data, err := export.Marshal(snap.Questions)
	if err != nil {
		return NewInternalError("failed to encode questions", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, export.ContentType, data)
}
