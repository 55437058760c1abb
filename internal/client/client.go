// Package client submits PDFs to the question-generation backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/pdf-qa-gen/frontend/internal/selector"
)

const (
	// GenerateQuestionsPath is the backend endpoint accepting the PDF.
	GenerateQuestionsPath = "/api/generate-questions"
	// FormField is the multipart field carrying the file.
	FormField = "file"
	// RequestIDHeader carries the client-side submission id.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// Result is a decoded success response.
type Result struct {
	Questions []string
	RequestID string
}

// ProgressFunc receives upload progress in percent (0-100).
type ProgressFunc func(percent float64)

// Client talks to the backend over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the backend rooted at baseURL.
// The default http.Client has no timeout; a submission runs until the backend answers.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + GenerateQuestionsPath,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GenerateQuestions uploads f as multipart form data and decodes the answer.
// Failures are returned as *ServerError, *TransportError or *MalformedResponseError.
func (c *Client) GenerateQuestions(ctx context.Context, f selector.File, submissionID string, onProgress ProgressFunc) (*Result, error) {
	body, contentType, err := encodeForm(f)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, newProgressReader(body, onProgress))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if submissionID != "" {
		req.Header.Set(RequestIDHeader, submissionID)
	}

	c.logger.Debug("submitting file", "submission", submissionID, "file", f.Name, "bytes", f.Size, "endpoint", c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err, Connectivity: isConnectivityFailure(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("backend responded", "submission", submissionID, "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return decodeSuccess(resp.StatusCode, data)
}

type successBody struct {
	Questions *[]string `json:"questions"`
	RequestID string    `json:"requestId"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

func decodeSuccess(status int, data []byte) (*Result, error) {
	var body successBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &MalformedResponseError{StatusCode: status, Err: err}
	}
	if body.Questions == nil {
		return nil, &MalformedResponseError{StatusCode: status, Err: errMissingQuestions}
	}
	questions := *body.Questions
	if questions == nil {
		questions = make([]string, 0)
	}
	return &Result{Questions: questions, RequestID: body.RequestID}, nil
}

func decodeError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return &MalformedResponseError{StatusCode: status, Err: err}
	}
	return &ServerError{
		StatusCode: status,
		Message:    body.Error,
		RequestID:  body.RequestID,
	}
}

func encodeForm(f selector.File) ([]byte, string, error) {
	src, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)
	part, err := writer.CreatePart(formFileHeader(f))
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func formFileHeader(f selector.File) map[string][]string {
	contentType := f.ContentType
	if contentType == "" {
		contentType = selector.AcceptedType
	}
	name := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(f.Name)
	return map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, name)},
		"Content-Type":        {contentType},
	}
}

// isConnectivityFailure reports whether err is a network failure as opposed to a
// cancelled or locally invalid request.
func isConnectivityFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// progressReader reports how much of the request body the transport has consumed.
type progressReader struct {
	mu       sync.Mutex
	r        *bytes.Reader
	total    int64
	read     int64
	lastPct  float64
	callback ProgressFunc
}

func newProgressReader(body []byte, callback ProgressFunc) io.Reader {
	return &progressReader{
		r:        bytes.NewReader(body),
		total:    int64(len(body)),
		lastPct:  -1,
		callback: callback,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if p.callback == nil {
		return n, err
	}

	p.mu.Lock()
	p.read += int64(n)
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.read) / float64(p.total) * 100
	}
	report := pct != p.lastPct
	p.lastPct = pct
	p.mu.Unlock()

	if report {
		p.callback(pct)
	}
	return n, err
}
