// Package metrics exposes Prometheus counters for the bot's core operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on its own registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ViolationsRecorded *prometheus.CounterVec
	RecordsExpired     prometheus.Counter
	ExpiryFailures     prometheus.Counter
	SearchQueries      prometheus.Counter
	IndexRebuilds      prometheus.Counter
	IndexedRules       prometheus.Gauge
	TicketsOpened      *prometheus.CounterVec
	TicketsClosed      *prometheus.CounterVec
	Backups            *prometheus.CounterVec
	Commands           *prometheus.CounterVec
	TaskDuration       *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ViolationsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "community_violations_recorded_total",
			Help: "Violations recorded, by resolved action",
		}, []string{"action"}),
		RecordsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "community_violations_expired_total",
			Help: "Violation records marked expired by the sweep",
		}),
		ExpiryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "community_violation_expiry_failures_total",
			Help: "Violation records the sweep failed to expire",
		}),
		SearchQueries: f.NewCounter(prometheus.CounterOpts{
			Name: "community_rule_searches_total",
			Help: "Rule search queries served",
		}),
		IndexRebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "community_search_index_rebuilds_total",
			Help: "Search index rebuilds",
		}),
		IndexedRules: f.NewGauge(prometheus.GaugeOpts{
			Name: "community_search_indexed_rules",
			Help: "Active rules in the current search index",
		}),
		TicketsOpened: f.NewCounterVec(prometheus.CounterOpts{
			Name: "community_tickets_opened_total",
			Help: "Tickets opened, by category",
		}, []string{"category"}),
		TicketsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "community_tickets_closed_total",
			Help: "Tickets closed, by how they were closed",
		}, []string{"by"}),
		Backups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "community_backups_total",
			Help: "Database backups attempted, by result",
		}, []string{"result"}),
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "community_commands_total",
			Help: "Slash commands handled, by command name",
		}, []string{"command"}),
		TaskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "community_task_duration_seconds",
			Help:    "Duration of scheduled maintenance tasks",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"task"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncViolation(action string) {
	if m == nil {
		return
	}
	m.ViolationsRecorded.WithLabelValues(action).Inc()
}

func (m *Metrics) AddExpired(expired, failed int) {
	if m == nil {
		return
	}
	m.RecordsExpired.Add(float64(expired))
	m.ExpiryFailures.Add(float64(failed))
}

func (m *Metrics) IncSearch() {
	if m == nil {
		return
	}
	m.SearchQueries.Inc()
}

// ObserveRebuild records a finished index rebuild holding n rules.
func (m *Metrics) ObserveRebuild(n int) {
	if m == nil {
		return
	}
	m.IndexRebuilds.Inc()
	m.IndexedRules.Set(float64(n))
}

func (m *Metrics) IncTicketOpened(category string) {
	if m == nil {
		return
	}
	m.TicketsOpened.WithLabelValues(category).Inc()
}

// AddTicketsClosed counts n tickets closed by "staff", "member" or "auto".
func (m *Metrics) AddTicketsClosed(by string, n int) {
	if m == nil {
		return
	}
	m.TicketsClosed.WithLabelValues(by).Add(float64(n))
}

func (m *Metrics) IncBackup(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Backups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCommand(name string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name).Inc()
}

// ObserveTask records the duration of a maintenance task.
// Call with time.Now() at the start of the task.
func (m *Metrics) ObserveTask(task string, start time.Time) {
	if m == nil {
		return
	}
	m.TaskDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
}
