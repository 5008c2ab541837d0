package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - счетчики debounce и поиска. nil *Metrics допустим и ничего не пишет.
type Metrics struct {
	scheduled      prometheus.Counter
	superseded     prometheus.Counter
	fired          prometheus.Counter
	pending        prometheus.Gauge
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scheduled: f.NewCounter(prometheus.CounterOpts{
			Name: "search_debounce_scheduled_total",
			Help: "Total number of search requests scheduled by the debounce gate",
		}),
		superseded: f.NewCounter(prometheus.CounterOpts{
			Name: "search_debounce_superseded_total",
			Help: "Total number of pending searches replaced by a newer request from the same client",
		}),
		fired: f.NewCounter(prometheus.CounterOpts{
			Name: "search_debounce_fired_total",
			Help: "Total number of debounce timers that fired and started a lookup",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "search_debounce_pending",
			Help: "Number of clients with a pending debounce timer",
		}),
		lookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_lookups_total",
				Help: "Total number of user lookups by status",
			},
			[]string{"status"},
		),
		lookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_lookup_duration_seconds",
			Help:    "Duration of user lookups including data source reads",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
	}
}

func (m *Metrics) observeSchedule(pending int, superseded bool) {
	if m == nil {
		return
	}
	m.scheduled.Inc()
	if superseded {
		m.superseded.Inc()
	}
	m.pending.Set(float64(pending))
}

func (m *Metrics) observeFire(pending int) {
	if m == nil {
		return
	}
	m.fired.Inc()
	m.pending.Set(float64(pending))
}

func (m *Metrics) setPending(pending int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(pending))
}

func (m *Metrics) observeLookup(seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.lookups.WithLabelValues(status).Inc()
	m.lookupDuration.Observe(seconds)
}
