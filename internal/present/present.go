// Package present renders upload/processing progress. It is a pure function
// of the values it is given and never measures anything itself.
package present

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdf-qa-gen/frontend/internal/models"
)

const barWidth = 30

// Bar is one labelled progress bar.
type Bar struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// View is everything the status box draws. An idle view has no bars and no label.
type View struct {
	Bars   []Bar  `json:"bars"`
	Status string `json:"status,omitempty"`
}

// Bars returns the bars to draw for p: none when idle, the upload bar otherwise,
// and the processing bar only while processing or complete.
func Bars(p models.Progress) []Bar {
	if p.Status == models.StateIdle || p.Status == "" {
		return nil
	}

	bars := []Bar{{Label: "Upload", Percent: clamp(p.UploadProgress)}}
	if p.Status == models.StateProcessing || p.Status == models.StateComplete {
		bars = append(bars, Bar{Label: "Processing", Percent: clamp(p.ProcessingProgress)})
	}
	return bars
}

// NewView builds the serializable view for p.
func NewView(p models.Progress) View {
	bars := Bars(p)
	if bars == nil {
		return View{Bars: []Bar{}}
	}
	return View{Bars: bars, Status: strings.ToUpper(string(p.Status))}
}

// Render writes a text rendering of p to w. Nothing is written when idle.
func Render(w io.Writer, p models.Progress) error {
	view := NewView(p)
	if len(view.Bars) == 0 {
		return nil
	}

	for _, bar := range view.Bars {
		filled := int(math.Round(bar.Percent / 100 * barWidth))
		line := fmt.Sprintf("%-10s [%s%s] %3.0f%%\n",
			bar.Label,
			strings.Repeat("#", filled),
			strings.Repeat(".", barWidth-filled),
			bar.Percent)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "STATUS: %s\n", view.Status)
	return err
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
