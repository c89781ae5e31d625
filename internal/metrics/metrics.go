// Package metrics exposes Prometheus collectors for the chat pipeline, the
// HTTP transport and the journal worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vslim"

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	turns            *prometheus.CounterVec
	turnDuration     prometheus.Histogram
	frames           *prometheus.CounterVec
	executions       *prometheus.CounterVec
	resolverFailures *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	journalEvents    *prometheus.CounterVec
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns handled, by outcome.",
		}, []string{"outcome"}),
		turnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent handling one conversation turn.",
			Buckets:   prometheus.DefBuckets,
		}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames produced by merges, by intent and state.",
		}, []string{"intent", "state"}),
		executions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Intent groups executed against the ledger.",
		}, []string{"intent", "outcome"}),
		resolverFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_failures_total",
			Help:      "Slot values the date or money resolver could not read.",
		}, []string{"resolver"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		journalEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_events_total",
			Help:      "Ledger events processed by the journal worker.",
		}, []string{"op", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveTurn(started time.Time, err error) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(outcome(err)).Inc()
	m.turnDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) CountFrame(intent, state string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(intent, state).Inc()
}

func (m *Metrics) CountExecution(intent string, err error) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(intent, outcome(err)).Inc()
}

func (m *Metrics) CountResolverFailure(resolver string) {
	if m == nil {
		return
	}
	m.resolverFailures.WithLabelValues(resolver).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
}

func (m *Metrics) CountJournalEvent(op string, err error) {
	if m == nil {
		return
	}
	m.journalEvents.WithLabelValues(op, outcome(err)).Inc()
}
