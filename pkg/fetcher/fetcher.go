// Package fetcher implements the fetch-and-render cycle: one range fetch per
// submit, then self re-arming incremental fetches while live polling applies.
package fetcher

import (
	"errors"
	"log/slog"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
	"github.com/modoterra/logpanel/pkg/transport/httplogs"
)

// Request is one scheduled fetch.
type Request struct {
	Gen      uint64
	Instance string
	Query    core.Query
	Delay    time.Duration // wait before issuing
}

// Fetcher owns the poll cursor and decides what to fetch next. It is not
// safe for concurrent use; drive it from a single loop.
type Fetcher struct {
	settings core.Settings
	cursor   int64
	gen      uint64
	live     bool // a live cycle is armed or in flight
	logger   *slog.Logger
}

// New creates an idle fetcher.
func New(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{logger: logger}
}

// Submit starts a new cycle for s and supersedes any previous one. It
// returns false when s names no instance; nothing must be fetched then.
// When a live cycle was still running the range fetch is deferred by one
// update interval.
func (f *Fetcher) Submit(s core.Settings) (Request, bool) {
	f.gen++
	wasLive := f.live
	f.live = false
	f.settings = s
	f.cursor = 0

	if !s.Valid() {
		f.logger.Debug("submit ignored", "instance", s.InstanceName)
		return Request{}, false
	}

	req := Request{
		Gen:      f.gen,
		Instance: s.InstanceName,
		Query:    core.RangeQuery(s.FromDate, s.ToDate),
	}
	if wasLive {
		req.Delay = s.Delay()
	}
	f.live = s.Polls()
	f.logger.Info("fetch cycle started",
		"instance", s.InstanceName,
		"from_date", s.FromDate,
		"to_date", s.ToDate,
		"live", f.live,
		"delay", req.Delay,
	)
	return req, true
}

// Complete records a successful batch for the cycle gen. current is false
// for a superseded cycle, whose batch must not be rendered. rearm reports
// whether next should be scheduled.
func (f *Fetcher) Complete(gen uint64, b core.Batch) (next Request, rearm bool, current bool) {
	if gen != f.gen {
		return Request{}, false, false
	}
	if b.LastUpdate > f.cursor {
		f.cursor = b.LastUpdate
	}
	if !f.settings.Polls() {
		f.live = false
		return Request{}, false, true
	}
	f.live = true
	return Request{
		Gen:      f.gen,
		Instance: f.settings.InstanceName,
		Query:    core.IncrementalQuery(f.cursor),
		Delay:    f.settings.Delay(),
	}, true, true
}

// Fail ends the cycle gen after a failed fetch. There is no retry. It
// reports whether gen was the current cycle.
func (f *Fetcher) Fail(gen uint64, err error) bool {
	if gen != f.gen {
		return false
	}
	f.live = false
	attrs := []any{"instance", f.settings.InstanceName, "err", err}
	var se *httplogs.StatusError
	if errors.As(err, &se) {
		attrs = append(attrs, "status", se.Code)
	}
	f.logger.Warn("log fetch failed", attrs...)
	return true
}

// Stop ends any running cycle. Pending and in-flight requests become stale.
func (f *Fetcher) Stop() {
	f.gen++
	f.live = false
}

// Current reports whether gen belongs to the running cycle.
func (f *Fetcher) Current(gen uint64) bool { return gen == f.gen }

// Cursor returns the last_update of the newest batch seen in this cycle.
func (f *Fetcher) Cursor() int64 { return f.cursor }

// Live reports whether a live cycle is armed or in flight.
func (f *Fetcher) Live() bool { return f.live }

// Settings returns the settings of the running cycle.
func (f *Fetcher) Settings() core.Settings { return f.settings }
