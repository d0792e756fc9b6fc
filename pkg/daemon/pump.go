package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

// Pump drains one tailer into an instance hub, restarting it with backoff
// whenever it fails to start or its stream ends.
type Pump struct {
	instance string
	tailer   core.Tailer
	hub      *Hub
	metrics  *Metrics
	logger   *slog.Logger
	backoff  func(failures int) time.Duration
}

// NewPump creates a pump. metrics may be nil.
func NewPump(instance string, t core.Tailer, hub *Hub, metrics *Metrics, logger *slog.Logger) *Pump {
	return &Pump{
		instance: instance,
		tailer:   t,
		hub:      hub,
		metrics:  metrics,
		logger:   logger,
		backoff:  backoff,
	}
}

// Run blocks until ctx is cancelled.
func (p *Pump) Run(ctx context.Context) error {
	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		ch, err := p.tailer.Tail(ctx)
		if err != nil {
			p.logger.Error("tailer start failed", "instance", p.instance, "tailer", p.tailer.Name(), "err", err)
		} else {
			if p.drain(ctx, ch) {
				failures = 0
			}
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Info("tailer ended", "instance", p.instance, "tailer", p.tailer.Name())
		}

		failures++
		delay := p.backoff(failures)
		if p.metrics != nil {
			p.metrics.restarts.WithLabelValues(p.instance, p.tailer.Name()).Inc()
		}
		p.logger.Info("restarting tailer", "instance", p.instance, "tailer", p.tailer.Name(), "delay", delay, "attempt", failures)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// drain consumes ch until it closes. It reports whether any line arrived.
func (p *Pump) drain(ctx context.Context, ch <-chan core.LogLine) bool {
	got := false
	for {
		select {
		case <-ctx.Done():
			return got
		case line, ok := <-ch:
			if !ok {
				return got
			}
			got = true
			p.ingest(line)
		}
	}
}

func (p *Pump) ingest(line core.LogLine) {
	if line.Line == "" {
		return
	}
	typ := Classify(line.Line)
	p.hub.Append(core.LogRecord{Type: typ, Content: line.Line})
	if p.metrics != nil {
		p.metrics.lines.WithLabelValues(p.instance, typ).Inc()
		p.metrics.buffered.WithLabelValues(p.instance).Set(float64(p.hub.Len()))
	}
}

// backoff returns exponential backoff delay: 1s, 2s, 4s, 8s, 16s, 30s max.
func backoff(failures int) time.Duration {
	if failures > 6 {
		return 30 * time.Second
	}
	failures = max(failures, 1)
	d := time.Duration(1<<uint(failures-1)) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
