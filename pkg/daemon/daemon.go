// Package daemon implements logpaneld: it tails configured sources into
// per-instance ring buffers and serves them over the logs endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modoterra/logpanel/pkg/config"
	"github.com/modoterra/logpanel/pkg/core"
	"github.com/modoterra/logpanel/pkg/sources/command"
	"github.com/modoterra/logpanel/pkg/sources/filetail"
	"github.com/modoterra/logpanel/pkg/transport/httplogs"
)

const shutdownTimeout = 5 * time.Second

// Daemon is the main logpaneld process.
type Daemon struct {
	hubs    map[string]*Hub
	names   []string
	pumps   []*Pump
	metrics *Metrics
	logger  *slog.Logger

	// ready is called once the HTTP server accepts connections.
	ready func()
}

// New builds hubs and tailers for every configured instance.
func New(cfg config.Server, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Instances) == 0 {
		return nil, errors.New("no instances configured")
	}

	d := &Daemon{
		hubs:    make(map[string]*Hub, len(cfg.Instances)),
		metrics: NewMetrics(),
		logger:  logger,
	}
	for name := range cfg.Instances {
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)

	for _, name := range d.names {
		inst := cfg.Instances[name]
		tailers, err := buildTailers(name, inst, logger)
		if err != nil {
			return nil, fmt.Errorf("instance %q: %w", name, err)
		}
		hub := NewHub(cfg.Backlog)
		d.hubs[name] = hub
		for _, t := range tailers {
			d.pumps = append(d.pumps, NewPump(name, t, hub, d.metrics, logger))
		}
	}
	return d, nil
}

func buildTailers(name string, inst config.Instance, logger *slog.Logger) ([]core.Tailer, error) {
	switch inst.Kind() {
	case "files":
		out := make([]core.Tailer, 0, len(inst.Files))
		for _, f := range inst.Files {
			out = append(out, filetail.New(name, f, inst.FromStart, logger))
		}
		return out, nil
	case "unit":
		return []core.Tailer{command.Journal(name, inst.Unit, logger)}, nil
	case "command":
		t, err := command.New(name, inst.Command, logger)
		if err != nil {
			return nil, err
		}
		return []core.Tailer{t}, nil
	}
	return nil, errors.New("no source configured")
}

// OnReady registers fn to run once the server is listening.
func (d *Daemon) OnReady(fn func()) { d.ready = fn }

// Hub returns the named instance's buffer.
func (d *Daemon) Hub(instance string) (*Hub, bool) {
	h, ok := d.hubs[instance]
	return h, ok
}

// Instances returns the served instance names, sorted.
func (d *Daemon) Instances() []string {
	return append([]string(nil), d.names...)
}

// Query implements httplogs.Backend.
func (d *Daemon) Query(instance string, q core.Query, now time.Time) (core.Batch, bool) {
	hub, ok := d.hubs[instance]
	if !ok {
		return core.Batch{}, false
	}
	d.metrics.queries.WithLabelValues(instance, q.Mode.String()).Inc()
	return hub.Query(q, now.Unix()), true
}

// Handler returns the HTTP routes, including /metrics.
func (d *Daemon) Handler() http.Handler {
	r := httplogs.NewRouter(d, d.logger)
	r.Method(http.MethodGet, "/metrics", d.metrics.Handler())
	return r
}

// Run serves on ln and runs every pump until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, p := range d.pumps {
		g.Go(func() error { return p.Run(ctx) })
	}

	srv := &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		d.logger.Info("serving logs", "addr", ln.Addr().String(), "instances", len(d.names))
		if d.ready != nil {
			d.ready()
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
