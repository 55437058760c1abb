package present

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBars(t *testing.T) {
	tests := []struct {
		status     models.UploadState
		wantLabels []string
	}{
		{models.StateIdle, nil},
		{models.StateProcessing, []string{"Upload", "Processing"}},
		{models.StateComplete, []string{"Upload", "Processing"}},
		{models.StateError, []string{"Upload"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			bars := Bars(models.Progress{UploadProgress: 40, ProcessingProgress: 10, Status: tt.status})
			var labels []string
			for _, b := range bars {
				labels = append(labels, b.Label)
			}
			assert.Equal(t, tt.wantLabels, labels)
		})
	}
}

func TestBars_Clamps(t *testing.T) {
	bars := Bars(models.Progress{UploadProgress: 150, ProcessingProgress: math.NaN(), Status: models.StateProcessing})
	require.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Percent)
	assert.Equal(t, 0.0, bars[1].Percent)

	bars = Bars(models.Progress{UploadProgress: -5, Status: models.StateError})
	assert.Equal(t, 0.0, bars[0].Percent)
}

func TestNewView(t *testing.T) {
	idle := NewView(models.Progress{Status: models.StateIdle})
	assert.Empty(t, idle.Bars)
	assert.NotNil(t, idle.Bars)
	assert.Empty(t, idle.Status)

	view := NewView(models.Progress{UploadProgress: 100, ProcessingProgress: 100, Status: models.StateComplete})
	assert.Equal(t, "COMPLETE", view.Status)
	assert.Len(t, view.Bars, 2)
}

func TestRender(t *testing.T) {
	t.Run("idle renders nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, models.Progress{Status: models.StateIdle}))
		assert.Empty(t, buf.String())
	})

	t.Run("processing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, models.Progress{UploadProgress: 50, ProcessingProgress: 0, Status: models.StateProcessing}))
		want := "Upload     [###############...............]  50%\n" +
			"Processing [..............................]   0%\n" +
			"STATUS: PROCESSING\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("error has no processing bar", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, models.Progress{UploadProgress: 100, Status: models.StateError}))
		assert.NotContains(t, buf.String(), "Processing")
		assert.Contains(t, buf.String(), "STATUS: ERROR")
	})

	t.Run("write failure", func(t *testing.T) {
		err := Render(failingWriter{}, models.Progress{Status: models.StateError})
		assert.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed")
}
