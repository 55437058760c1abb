// handlers_upload.go - File selection and submission handlers
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/client"
	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/pdf-qa-gen/frontend/internal/selector"
	"github.com/pdf-qa-gen/frontend/internal/storage"
	"github.com/pdf-qa-gen/frontend/internal/upload"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	controller Controller
	store      storage.Store
	logger     *slog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(controller Controller, store storage.Store, logger *slog.Logger) UploadHandler {
	return &UploadHandlerImpl{
		controller: controller,
		store:      store,
		logger:     logger,
	}
}

// HandleUpload filters the multipart "file" field, stages the accepted PDF and
// starts a submission. It answers 202 with the processing snapshot.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	// the drop zone is only live while idle
	if h.controller.Snapshot().Status != models.StateIdle {
		return NewConflictError("a submission is already in progress")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected multipart form data", err)
	}

	var candidates []selector.File
	for _, fh := range form.File[client.FormField] {
		candidates = append(candidates, selector.FromHeader(fh))
	}

	chosen, err := selector.Select(candidates, false)
	if err != nil {
		if rej, ok := selector.AsRejection(err); ok {
			h.logger.Info("file rejected", "kind", rej.Kind, "file", rej.FileName, "bytes", rej.Size)
			return NewRejectionError(rej)
		}
		return NewBadRequestError("invalid selection", err)
	}

	src, err := chosen.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	staged, err := storage.Stage(h.store, chosen.Name, chosen.ContentType, src)
	if err != nil {
		return NewInternalError("failed to stage file", err)
	}

	// the submission outlives this request
	if _, err := h.controller.Submit(context.WithoutCancel(c.Request().Context()), staged); err != nil {
		if relErr := staged.Release(); relErr != nil {
			h.logger.Warn("failed to release staged file", "file", staged.Name, "error", relErr)
		}
		if errors.Is(err, upload.ErrBusy) {
			return NewConflictError("a submission is already in progress")
		}
		return NewInternalError("failed to start submission", err)
	}

	return c.JSON(http.StatusAccepted, h.controller.Snapshot())
}

// HandleReset returns the controller to idle
func (h *UploadHandlerImpl) HandleReset(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.Reset())
}
