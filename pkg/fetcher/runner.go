package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

// ErrNoInstance is returned by Run when the settings name no instance.
var ErrNoInstance = errors.New("no instance selected")

// RenderFunc receives each fetched batch in order.
type RenderFunc func(records []core.LogRecord)

// Runner drives a Fetcher synchronously against a Source.
type Runner struct {
	fetcher *Fetcher
	source  core.Source
	after   func(time.Duration) <-chan time.Time
}

// NewRunner creates a runner fetching from source.
func NewRunner(source core.Source, logger *slog.Logger) *Runner {
	return &Runner{
		fetcher: New(logger),
		source:  source,
		after:   time.After,
	}
}

// Fetcher exposes the underlying state machine.
func (r *Runner) Fetcher() *Fetcher { return r.fetcher }

// Run performs one cycle for s. It returns nil when the cycle ends on its own
// (closed range or live mode off), ctx.Err() on cancellation, and the fetch
// error when a request fails.
func (r *Runner) Run(ctx context.Context, s core.Settings, render RenderFunc) error {
	req, ok := r.fetcher.Submit(s)
	if !ok {
		return ErrNoInstance
	}

	for {
		if err := ctx.Err(); err != nil {
			r.fetcher.Stop()
			return err
		}
		if req.Delay > 0 {
			select {
			case <-ctx.Done():
				r.fetcher.Stop()
				return ctx.Err()
			case <-r.after(req.Delay):
			}
		}

		batch, err := r.source.Fetch(ctx, req.Instance, req.Query)
		if err != nil {
			if ctx.Err() != nil {
				r.fetcher.Stop()
				return ctx.Err()
			}
			r.fetcher.Fail(req.Gen, err)
			return err
		}

		next, rearm, current := r.fetcher.Complete(req.Gen, batch)
		if !current {
			return nil
		}
		if render != nil && len(batch.Logs) > 0 {
			render(batch.Logs)
		}
		if !rearm {
			return nil
		}
		req = next
	}
}
