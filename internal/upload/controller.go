// Package upload owns the submission state machine:
// idle -> processing -> complete|error -> idle.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdf-qa-gen/frontend/internal/client"
	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/pdf-qa-gen/frontend/internal/selector"
)

// ErrBusy is returned by Submit when the controller is not idle.
var ErrBusy = errors.New("a submission is already in progress")

// Submitter defines what the controller needs from the backend client.
type Submitter interface {
	GenerateQuestions(ctx context.Context, f selector.File, submissionID string, onProgress client.ProgressFunc) (*client.Result, error)
}

// Controller serializes submissions and holds the only mutable UI state.
type Controller struct {
	mu          sync.RWMutex
	submitter   Submitter
	logger      *slog.Logger
	state       models.Snapshot
	file        selector.File
	generation  uint64
	subscribers map[int]chan models.Snapshot
	nextSubID   int
}

// NewController creates a controller in the idle state.
func NewController(submitter Submitter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		submitter:   submitter,
		logger:      logger,
		state:       models.NewIdleSnapshot(),
		subscribers: make(map[int]chan models.Snapshot),
	}
}

// Submit starts one submission of f. It returns ErrBusy without issuing a
// request unless the controller is idle. The returned channel is closed once
// the response has been applied or discarded.
func (c *Controller) Submit(ctx context.Context, f selector.File) (<-chan struct{}, error) {
	c.mu.Lock()
	if c.state.Status != models.StateIdle {
		status := c.state.Status
		c.mu.Unlock()
		return nil, fmt.Errorf("%w (state %s)", ErrBusy, status)
	}

	c.generation++
	gen := c.generation
	id := uuid.New().String()

	c.file = f
	c.state = models.Snapshot{
		Status:       models.StateProcessing,
		SubmissionID: id,
		FileName:     f.Name,
		FileSize:     f.Size,
		Questions:    make([]string, 0),
		Progress:     models.Progress{Status: models.StateProcessing},
		UpdatedAt:    time.Now(),
	}
	c.publishLocked()
	c.mu.Unlock()

	c.logger.Info("submission started", "submission", shortID(id), "file", f.Name, "bytes", f.Size)

	done := make(chan struct{})
	go c.run(ctx, gen, id, f, done)
	return done, nil
}

// Reset clears the selected file, questions and error and returns to idle.
// A submission still in flight is abandoned; its result will be ignored.
func (c *Controller) Reset() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Status {
	case models.StateIdle:
		return c.snapshotLocked()
	case models.StateProcessing:
		// the in-flight goroutine releases its own file once it returns
		c.logger.Info("abandoning in-flight submission", "submission", shortID(c.state.SubmissionID))
	default:
		if err := c.file.Release(); err != nil {
			c.logger.Warn("failed to release selected file", "file", c.file.Name, "error", err)
		}
	}

	c.generation++
	c.file = selector.File{}
	c.state = models.NewIdleSnapshot()
	c.publishLocked()
	return c.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Progress returns the presenter input for the current state.
func (c *Controller) Progress() models.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Progress
}

// Subscribe returns a channel receiving a snapshot after every state change,
// starting with the current one. Slow readers only ever see the latest snapshot.
func (c *Controller) Subscribe() (<-chan models.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan models.Snapshot, 1)
	ch <- c.snapshotLocked()
	c.subscribers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (c *Controller) run(ctx context.Context, gen uint64, id string, f selector.File, done chan struct{}) {
	defer close(done)

	start := time.Now()
	res, err := c.safeSubmit(ctx, gen, id, f)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state.Status != models.StateProcessing {
		c.logger.Info("discarding response for superseded submission", "submission", shortID(id))
		if relErr := f.Release(); relErr != nil {
			c.logger.Warn("failed to release selected file", "file", f.Name, "error", relErr)
		}
		return
	}

	c.state.UpdatedAt = time.Now()
	if err != nil {
		details := Normalize(err)
		c.state.Status = models.StateError
		c.state.Error = &details
		c.state.Progress.Status = models.StateError
		c.state.Progress.ProcessingProgress = 0
		c.logger.Warn("submission failed", "submission", shortID(id), "message", details.Message,
			"requestId", details.RequestID, "error", err, "elapsed", time.Since(start))
	} else {
		c.state.Status = models.StateComplete
		c.state.Questions = append(make([]string, 0, len(res.Questions)), res.Questions...)
		c.state.Progress = models.Progress{
			UploadProgress:     100,
			ProcessingProgress: 100,
			Status:             models.StateComplete,
		}
		c.logger.Info("submission complete", "submission", shortID(id), "questions", len(res.Questions),
			"requestId", res.RequestID, "elapsed", time.Since(start))
	}
	c.publishLocked()
}

// safeSubmit turns a panic in the submitter into an error so a failed
// submission always lands in the error state.
func (c *Controller) safeSubmit(ctx context.Context, gen uint64, id string, f selector.File) (res *client.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("submission panicked: %v", r)
		}
	}()

	res, err = c.submitter.GenerateQuestions(ctx, f, id, func(pct float64) {
		c.reportUpload(gen, pct)
	})
	if err == nil && res == nil {
		err = errors.New("backend returned no result")
	}
	return res, err
}

func (c *Controller) reportUpload(gen uint64, pct float64) {
	pct = math.Floor(math.Max(0, math.Min(100, pct)))

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state.Status != models.StateProcessing {
		return
	}
	if pct == c.state.Progress.UploadProgress {
		return
	}
	c.state.Progress.UploadProgress = pct
	c.state.UpdatedAt = time.Now()
	c.publishLocked()
}

func (c *Controller) snapshotLocked() models.Snapshot {
	snap := c.state
	snap.Questions = append(make([]string, 0, len(c.state.Questions)), c.state.Questions...)
	if c.state.Error != nil {
		details := *c.state.Error
		snap.Error = &details
	}
	return snap
}

func (c *Controller) publishLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot the reader has not picked up yet
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
