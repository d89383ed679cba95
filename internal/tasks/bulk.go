package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/homedeck/internal/shared"
	"golang.org/x/time/rate"
)

// DeviceActionFunc performs one action on one device.
type DeviceActionFunc func(ctx context.Context, deviceID string) error

// BulkOpts configures [BulkAction].
type BulkOpts struct {
	Action     string  // Label for progress and results, e.g. "wake"
	NumWorkers int     // Concurrent workers (default: 4, max: 8)
	RateLimit  float64 // Actions per second (default: 2)
}

// ActionResult is the outcome for one device.
type ActionResult struct {
	DeviceID string
	Action   string
	Err      error
}

// BulkResult summarizes a bulk action. Results are in completion order.
type BulkResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ActionResult
}

// BulkAction runs fn for every id through a worker pool, pacing starts with a token bucket.
// Individual failures are collected, not returned; the error is non-nil only when ctx ends early.
func BulkAction(ctx context.Context, prog chan<- ProgressUpdate, ids []string, fn DeviceActionFunc, opts BulkOpts) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no devices given", shared.ErrMissingArgument)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan string)
	results := make(chan ActionResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- ActionResult{DeviceID: id, Action: opts.Action, Err: fn(ctx, id)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BulkResult{Total: len(ids), Results: make([]ActionResult, 0, len(ids))}
	for r := range results {
		result.Results = append(result.Results, r)
		if r.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		sendProgress(prog, deviceActionUpdate(len(result.Results), len(ids), r))
	}

	if len(result.Results) < len(ids) {
		cause := ctx.Err()
		if cause == nil {
			cause = shared.ErrTimeout
		}
		return result, fmt.Errorf("%s stopped after %d of %d devices: %w", opts.Action, len(result.Results), len(ids), cause)
	}
	return result, nil
}
