package upload

import (
	"errors"

	"github.com/pdf-qa-gen/frontend/internal/client"
	"github.com/pdf-qa-gen/frontend/internal/models"
)

// Messages used when normalizing failures.
const (
	ServerErrorFallback   = "Server Error"
	UnknownRequestID      = "UNKNOWN"
	ConnectFailureMessage = "Could not connect to backend server"
)

// Normalize maps a submission failure onto the {message, requestId} pair
// shown in the error view.
func Normalize(err error) models.ErrorDetails {
	if err == nil {
		return models.ErrorDetails{Message: models.UnknownErrorMessage, RequestID: models.NoRequestID}
	}

	var serverErr *client.ServerError
	if errors.As(err, &serverErr) && serverErr != nil {
		details := models.ErrorDetails{Message: serverErr.Message, RequestID: serverErr.RequestID}
		if details.Message == "" {
			details.Message = ServerErrorFallback
		}
		if details.RequestID == "" {
			details.RequestID = UnknownRequestID
		}
		return details
	}

	var transportErr *client.TransportError
	if errors.As(err, &transportErr) && transportErr != nil && transportErr.Connectivity {
		return models.ErrorDetails{Message: ConnectFailureMessage, RequestID: models.NoRequestID}
	}

	msg := err.Error()
	if msg == "" {
		msg = models.UnknownErrorMessage
	}
	return models.ErrorDetails{Message: msg, RequestID: models.NoRequestID}
}
