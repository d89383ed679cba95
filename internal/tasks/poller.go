package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// State is the poller's lifecycle state.
type State int

const (
	Idle State = iota
	Submitted
	Polling
	Completed
	Errored
)

func (s State) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Errored:
		return "error"
	default:
		return "idle"
	}
}

// DownloadClient is the download service as seen by the poller.
type DownloadClient interface {
	Submit(ctx context.Context, req models.DownloadRequest) (string, error)
	Status(ctx context.Context, taskID string) (models.TaskStatus, error)
}

// Snapshot is the poller's observable state.
type Snapshot struct {
	State       State
	TaskID      string
	Progress    float64
	Message     string
	DownloadURL string
	Err         error
}

// TriggerEnabled reports whether a new submission should be offered.
func (s Snapshot) TriggerEnabled() bool {
	return s.State != Submitted && s.State != Polling
}

// Poller tracks one download task at a time.
type Poller struct {
	client   DownloadClient
	interval time.Duration
	logger   *log.Logger

	submitMu sync.Mutex

	mu     sync.Mutex
	snap   Snapshot
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates an idle poller. A non-positive interval means one second.
func NewPoller(client DownloadClient, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Poller{client: client, interval: interval, logger: shared.WithLogger(logger, "task", "download")}
}

// Snapshot returns the current state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// State returns the current lifecycle state.
func (p *Poller) State() State { return p.Snapshot().State }

// TriggerEnabled reports whether a new submission should be offered.
func (p *Poller) TriggerEnabled() bool { return p.Snapshot().TriggerEnabled() }

// Submit cancels any running poll, then submits req and starts polling its task.
// The returned error covers the submission only; poll outcomes arrive through
// progress and [Poller.Wait].
func (p *Poller) Submit(ctx context.Context, req models.DownloadRequest, progress chan<- ProgressUpdate) error {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	p.stop()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.snap = Snapshot{State: Submitted}
	p.mu.Unlock()

	sendProgress(progress, submittedUpdate(req.URL))
	p.logger.Info("submitting", "url", req.URL, "scale", req.Scale, "sharpen", req.SharpenCount)

	taskID, err := p.client.Submit(ctx, req)
	if err != nil {
		p.finish(gen, Snapshot{State: Errored, Err: err, Message: err.Error()}, progress)
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.snap = Snapshot{State: Polling, TaskID: taskID}
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.logger.Info("polling", "task_id", taskID, "interval", p.interval)
	go p.poll(pollCtx, gen, taskID, progress, done)
	return nil
}

// Wait blocks until the current poll stops or ctx ends, then returns the final snapshot.
// An errored task returns its error.
func (p *Poller) Wait(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return p.Snapshot(), ctx.Err()
		}
	}

	snap := p.Snapshot()
	return snap, snap.Err
}

// Reset stops any poll and returns to idle.
func (p *Poller) Reset() {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	p.stop()
	p.mu.Lock()
	p.gen++
	p.snap = Snapshot{}
	p.mu.Unlock()
}

// stop cancels the running poll and waits for its goroutine to exit.
func (p *Poller) stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("previous poll stopped")
}

func (p *Poller) poll(ctx context.Context, gen uint64, taskID string, progress chan<- ProgressUpdate, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.client.Status(ctx, taskID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.finish(gen, Snapshot{State: Errored, TaskID: taskID, Err: err, Message: err.Error()}, progress)
			return
		}

		snap := Snapshot{
			State:    Polling,
			TaskID:   taskID,
			Progress: status.Progress,
			Message:  status.Message,
		}

		switch status.Status {
		case models.TaskCompleted:
			snap.State = Completed
			snap.DownloadURL = status.DownloadURL
			p.finish(gen, snap, progress)
			return
		case models.TaskError:
			snap.State = Errored
			snap.Err = fmt.Errorf("%w: %s", shared.ErrApplication, status.Message)
			p.finish(gen, snap, progress)
			return
		case models.TaskNotFound:
			snap.State = Errored
			snap.Err = fmt.Errorf("%w: task %s", shared.ErrNotFound, taskID)
			if snap.Message == "" {
				snap.Message = "task not found"
			}
			p.finish(gen, snap, progress)
			return
		}

		if !p.apply(gen, snap) {
			return
		}
		sendProgress(progress, pollUpdate(snap))
	}
}

// apply stores snap if gen is still current.
func (p *Poller) apply(gen uint64, snap Snapshot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false
	}
	p.snap = snap
	return true
}

func (p *Poller) finish(gen uint64, snap Snapshot, progress chan<- ProgressUpdate) {
	if !p.apply(gen, snap) {
		return
	}

	if snap.State == Completed {
		p.logger.Info("completed", "task_id", snap.TaskID, "download_url", snap.DownloadURL)
		sendProgress(progress, completedUpdate(snap))
		return
	}
	p.logger.Error("task failed", "task_id", snap.TaskID, "error", snap.Err)
	sendProgress(progress, failedUpdate(snap))
}
