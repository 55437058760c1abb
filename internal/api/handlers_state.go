// handlers_state.go - State and progress handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/present"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the media type of msgpack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// StateHandlerImpl implements the StateHandler interface
type StateHandlerImpl struct {
	controller Controller
}

// NewStateHandler creates a new state handler
func NewStateHandler(controller Controller) StateHandler {
	return &StateHandlerImpl{controller: controller}
}

// HandleState returns the current snapshot as JSON, or msgpack when asked for it.
func (h *StateHandlerImpl) HandleState(c echo.Context) error {
	snap := h.controller.Snapshot()

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack) {
		data, err := msgpack.Marshal(snap)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}

	return c.JSON(http.StatusOK, snap)
}

// HandleProgress returns the bars the status box should draw.
func (h *StateHandlerImpl) HandleProgress(c echo.Context) error {
	return c.JSON(http.StatusOK, present.NewView(h.controller.Progress()))
}
