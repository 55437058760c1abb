package client

import (
	"errors"
	"fmt"
)

var errMissingQuestions = errors.New("response has no questions field")

// ServerError is a non-2xx response with a structured JSON body.
// Message and RequestID are empty when the body omitted them.
type ServerError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
}

// TransportError means no usable HTTP response reached the client.
type TransportError struct {
	Err error
	// Connectivity is set when the failure is a network-level one
	// (refused, unreachable, reset) rather than a local or cancelled request.
	Connectivity bool
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is a response body that could not be decoded.
type MalformedResponseError struct {
	StatusCode int
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
