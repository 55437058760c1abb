package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pdf-qa-gen/frontend/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPDF(content string) selector.File {
	return selector.NewFile("doc.pdf", "application/pdf", int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte(content))), nil
	}, nil)
}

func TestGenerateQuestions_Success(t *testing.T) {
	var gotBody, gotName, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GenerateQuestionsPath, r.URL.Path)
		gotRequestID = r.Header.Get(RequestIDHeader)

		file, header, err := r.FormFile(FormField)
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(file)
			gotBody = string(data)
			gotName = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"questions":["a","b"],"requestId":"req-1"}`))
	}))
	defer srv.Close()

	var (
		mu       sync.Mutex
		progress []float64
	)
	c := New(srv.URL + "/")
	res, err := c.GenerateQuestions(context.Background(), testPDF("%PDF-1.4 hello"), "sub-1", func(p float64) {
		mu.Lock()
		progress = append(progress, p)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Questions)
	assert.Equal(t, "req-1", res.RequestID)
	assert.Equal(t, "%PDF-1.4 hello", gotBody)
	assert.Equal(t, "doc.pdf", gotName)
	assert.Equal(t, "sub-1", gotRequestID)
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, progress)
	assert.Equal(t, 100.0, progress[len(progress)-1])
}

func TestGenerateQuestions_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "structured server error",
			status: http.StatusBadRequest,
			body:   `{"error":"Bad PDF","requestId":"req-42"}`,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusBadRequest, se.StatusCode)
				assert.Equal(t, "Bad PDF", se.Message)
				assert.Equal(t, "req-42", se.RequestID)
			},
		},
		{
			name:   "server error without fields",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail":"missing file"}`,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.True(t, errors.As(err, &se))
				assert.Empty(t, se.Message)
				assert.Empty(t, se.RequestID)
			},
		},
		{
			name:   "html error page",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				var me *MalformedResponseError
				require.True(t, errors.As(err, &me))
				assert.Equal(t, http.StatusBadGateway, me.StatusCode)
			},
		},
		{
			name:   "success body is not json",
			status: http.StatusOK,
			body:   `ok`,
			check: func(t *testing.T, err error) {
				var me *MalformedResponseError
				assert.True(t, errors.As(err, &me))
			},
		},
		{
			name:   "success body without questions",
			status: http.StatusOK,
			body:   `{"requestId":"req-7"}`,
			check: func(t *testing.T, err error) {
				var me *MalformedResponseError
				require.True(t, errors.As(err, &me))
				assert.ErrorIs(t, err, errMissingQuestions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GenerateQuestions(context.Background(), testPDF("%PDF"), "", nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGenerateQuestions_EmptyQuestionList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"questions":[]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).GenerateQuestions(context.Background(), testPDF("%PDF"), "", nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Questions)
	assert.Empty(t, res.Questions)
}

func TestGenerateQuestions_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).GenerateQuestions(context.Background(), testPDF("%PDF"), "", nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Connectivity)
}

func TestGenerateQuestions_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"questions":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).GenerateQuestions(ctx, testPDF("%PDF"), "", nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Connectivity)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateQuestions_UnreadableFile(t *testing.T) {
	f := selector.NewFile("gone.pdf", "application/pdf", 1, func() (io.ReadCloser, error) {
		return nil, errors.New("file vanished")
	}, nil)

	_, err := New("http://127.0.0.1:1").GenerateQuestions(context.Background(), f, "", nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Connectivity)
	assert.Contains(t, err.Error(), "file vanished")
}
