// Package httpapi exposes a small read-only chi router for
// operational visibility into a running system: agents, methods, and
// Prometheus metrics (section 12's domain-stack addition — spec.md
// itself lists no HTTP surface, but excludes none either).
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/method"
	"github.com/quenio/agerun/pkg/metrics"
)

// System is the subset of pkg/system.System this package reads from —
// declared narrowly here rather than importing *system.System so
// httpapi depends only on what it actually uses.
type System interface {
	Agents() *agent.Registry
	Methodology() *method.Methodology
}

// Router builds the introspection API's chi router.
func Router(sys System, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)

	r.Get("/agents", listAgents(sys))
	r.Get("/agents/{id}", getAgent(sys))
	r.Get("/methods", listMethods(sys))
	r.Handle("/metrics", m.Handler())

	return r
}

type agentSummary struct {
	ID            int64  `json:"id"`
	MethodName    string `json:"method_name"`
	MethodVersion string `json:"method_version"`
	QueueLen      int    `json:"queue_len"`
}

func listAgents(sys System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := sys.Agents().Agents()
		out := make([]agentSummary, len(list))
		for i, a := range list {
			out[i] = agentSummary{
				ID:            a.ID(),
				MethodName:    a.Method().Name,
				MethodVersion: a.Method().Version.String(),
				QueueLen:      a.QueueLen(),
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAgent(sys System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid agent id", http.StatusBadRequest)
			return
		}
		a, ok := sys.Agents().Get(id)
		if !ok {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(data.FormatStructure(a.Memory(), 0)))
	}
}

type methodSummary struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func listMethods(sys System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := sys.Methodology().List()
		out := make([]methodSummary, len(list))
		for i, m := range list {
			out[i] = methodSummary{Name: m.Name, Version: m.Version.String()}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging — grounded on the teacher's
// pkg/transport/http_metrics_middleware.go wrapper, trimmed to just
// the status code (no span/size bookkeeping, since this API emits
// plain log lines rather than OpenTelemetry spans).
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		slog.Debug("httpapi request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}
