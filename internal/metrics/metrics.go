// Package metrics exposes Prometheus instrumentation for the verse engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bible_verses"

// Scheduling sources.
const (
	SourcePopulate   = "populate"
	SourceExplicit   = "explicit"
	SourceCollection = "collection"
)

// Widget push results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	Scheduled     *prometheus.CounterVec
	Promoted      prometheus.Counter
	Cancelled     prometheus.Counter
	ForegroundSet prometheus.Counter
	WidgetPushes  *prometheus.CounterVec
	Pending       prometheus.Gauge
}

// NewMetrics registers the engine metrics on reg. Pass nil to use the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Scheduled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_total",
			Help:      "Reveals added to the schedule",
		}, []string{"source"}),
		Promoted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promoted_total",
			Help:      "Due reveals promoted to the current verse",
		}),
		Cancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancelled_total",
			Help:      "Reveals removed from the schedule",
		}),
		ForegroundSet: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "foreground_refresh_total",
			Help:      "Current verse replaced on app foreground",
		}),
		WidgetPushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "widget_pushes_total",
			Help:      "Widget bridge notifications by result",
		}, []string{"result"}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_reveals",
			Help:      "Reveals waiting in the schedule",
		}),
	}
}

// Nop returns metrics bound to a throwaway registry.
func Nop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func (m *Metrics) RecordScheduled(source string, n int) {
	if n > 0 {
		m.Scheduled.WithLabelValues(source).Add(float64(n))
	}
}

func (m *Metrics) RecordWidgetPush(err error) {
	if err != nil {
		m.WidgetPushes.WithLabelValues(ResultError).Inc()
		return
	}
	m.WidgetPushes.WithLabelValues(ResultOK).Inc()
}

func (m *Metrics) SetPending(n int) {
	m.Pending.Set(float64(n))
}
