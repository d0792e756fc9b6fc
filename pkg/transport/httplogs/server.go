package httplogs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modoterra/logpanel/pkg/core"
)

// Backend answers logs queries on the daemon side.
type Backend interface {
	// Instances returns the served instance names in display order.
	Instances() []string

	// Query runs q against instance. ok is false for an unknown instance.
	Query(instance string, q core.Query, now time.Time) (batch core.Batch, ok bool)
}

// NewRouter mounts the logs endpoint under PathPrefix plus /healthz.
// Callers may add further routes to the returned router.
func NewRouter(b Backend, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get(PathPrefix, instancesHandler(b))
	r.Get(PathPrefix+"/", instancesHandler(b))
	r.Get(PathPrefix+"/{instance}", logsHandler(b))
	return r
}

func instancesHandler(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := b.Instances()
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, InstancesResponse{Instances: names})
	}
}

func logsHandler(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instance := chi.URLParam(r, "instance")
		q, err := ParseQuery(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		batch, ok := b.Query(instance, q, time.Now())
		if !ok {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown instance: " + instance})
			return
		}
		if batch.Logs == nil {
			batch.Logs = []core.LogRecord{}
		}
		writeJSON(w, http.StatusOK, batch)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
