package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ChecksTotal     *prometheus.CounterVec
	SessionsTotal   *prometheus.CounterVec
	PagesCrawled    prometheus.Counter
	SessionProgress prometheus.Gauge
}

// New registers the collectors on the given registerer. Pass nil to use the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawlplan_status_checks_total",
			Help: "Total number of status checks, by recommended action.",
		}, []string{"action"}),
		SessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawlplan_sessions_total",
			Help: "Total number of crawl sessions, by final state.",
		}, []string{"state"}),
		PagesCrawled: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawlplan_pages_crawled_total",
			Help: "Total number of pages processed across all sessions.",
		}),
		SessionProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crawlplan_session_progress_percent",
			Help: "Progress of the active crawl session, 0 when idle.",
		}),
	}
}

func (m *Metrics) IncCheck(action string) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) IncSession(state string) {
	if m == nil {
		return
	}
	m.SessionsTotal.WithLabelValues(state).Inc()
}
