// fake_backend.go - Fake question-generation backend for testing
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Upload is one request received by a FakeBackend.
type Upload struct {
	FileName  string
	Data      []byte
	RequestID string
}

// FakeBackend serves /api/generate-questions and records what it receives.
type FakeBackend struct {
	*httptest.Server

	mu      sync.Mutex
	uploads []Upload
	status  int
	body    string
	gate    chan struct{}
}

// NewFakeBackend starts a backend answering every request with status and body.
// It is closed when the test ends.
func NewFakeBackend(t *testing.T, status int, body string) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{status: status, body: body}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(func() {
		fb.Release()
		fb.Close()
	})
	return fb
}

// NewQuestionsBackend starts a backend returning questions with HTTP 200.
func NewQuestionsBackend(t *testing.T, questions ...string) *FakeBackend {
	t.Helper()
	if questions == nil {
		questions = []string{}
	}
	body, _ := json.Marshal(map[string]interface{}{"questions": questions, "requestId": "fake-req"})
	return NewFakeBackend(t, http.StatusOK, string(body))
}

// Hold makes subsequent requests block until Release is called.
func (fb *FakeBackend) Hold() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.gate = make(chan struct{})
}

// Release unblocks held requests.
func (fb *FakeBackend) Release() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.gate != nil {
		close(fb.gate)
		fb.gate = nil
	}
}

// Uploads returns a copy of everything received so far.
func (fb *FakeBackend) Uploads() []Upload {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Upload(nil), fb.uploads...)
}

func (fb *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/api/generate-questions" {
		http.NotFound(w, r)
		return
	}

	upload := Upload{RequestID: r.Header.Get("X-Request-ID")}
	if file, header, err := r.FormFile("file"); err == nil {
		upload.FileName = header.Filename
		upload.Data, _ = io.ReadAll(file)
		file.Close()
	}

	fb.mu.Lock()
	fb.uploads = append(fb.uploads, upload)
	gate := fb.gate
	status, body := fb.status, fb.body
	fb.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
