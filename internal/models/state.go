package models

import "time"

// UploadState represents the status driving which view is rendered.
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateProcessing UploadState = "processing"
	StateComplete   UploadState = "complete"
	StateError      UploadState = "error"
)

// Placeholder values used when a failure carries no usable details.
const (
	UnknownErrorMessage = "Unknown Error"
	NoRequestID         = "N/A"
)

// ErrorDetails is the normalized failure shown in the error view.
type ErrorDetails struct {
	Message   string `json:"message" msgpack:"message"`
	RequestID string `json:"requestId" msgpack:"requestId"`
}

// IsZero reports whether no error has been recorded.
func (e ErrorDetails) IsZero() bool {
	return e.Message == "" && e.RequestID == ""
}

// Progress is the input of the status presenter.
type Progress struct {
	UploadProgress     float64     `json:"uploadProgress" msgpack:"uploadProgress"`         // 0-100
	ProcessingProgress float64     `json:"processingProgress" msgpack:"processingProgress"` // 0-100
	Status             UploadState `json:"status" msgpack:"status"`
}

// Snapshot is a by-value copy of the controller state.
type Snapshot struct {
	Status       UploadState   `json:"status" msgpack:"status"`
	SubmissionID string        `json:"submissionId,omitempty" msgpack:"submissionId,omitempty"`
	FileName     string        `json:"fileName,omitempty" msgpack:"fileName,omitempty"`
	FileSize     int64         `json:"fileSize,omitempty" msgpack:"fileSize,omitempty"`
	Questions    []string      `json:"questions" msgpack:"questions"`
	Error        *ErrorDetails `json:"error,omitempty" msgpack:"error,omitempty"`
	Progress     Progress      `json:"progress" msgpack:"progress"`
	UpdatedAt    time.Time     `json:"updatedAt" msgpack:"updatedAt"`
}

// NewIdleSnapshot returns the initial state.
func NewIdleSnapshot() Snapshot {
	return Snapshot{
		Status:    StateIdle,
		Questions: make([]string, 0),
		Progress:  Progress{Status: StateIdle},
		UpdatedAt: time.Now(),
	}
}
