package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	CasesDispatched *prometheus.CounterVec
	CasesRequeued   prometheus.Counter
	CasesDelivered  *prometheus.CounterVec
	CasesAbandoned  *prometheus.CounterVec
	Retries         *prometheus.CounterVec
	CaseLatency     prometheus.Histogram
	OldestWaiting   prometheus.Gauge
}

// DepthFunc reports the current intake and dispatch queue depths.
type DepthFunc func() (intake, dispatch int)

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. Queue depths are read through depths
// at scrape time rather than pushed on every enqueue.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, depths DepthFunc) *Metrics {
	m := &Metrics{
		CasesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cases_dispatched_total",
			Help: "Cases handed to the worker pool, by disposition code.",
		}, []string{"code"}),

		CasesRequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cases_requeued_total",
			Help: "Cases a reviewer sent back to the front of the intake queue.",
		}),

		CasesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cases_delivered_total",
			Help: "Cases whose resolution message was accepted by the notifier.",
		}, []string{"code"}),

		CasesAbandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cases_abandoned_total",
			Help: "Cases dropped by a worker without notifying the user, by reason.",
		}, []string{"reason"}),

		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_retries_total",
			Help: "Transient failures retried in place, by pipeline stage.",
		}, []string{"stage"}),

		CaseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "case_processing_seconds",
			Help:    "Time from dequeue to a finished case (delivered or abandoned).",
			Buckets: prometheus.DefBuckets,
		}),

		OldestWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intake_oldest_wait_seconds",
			Help: "Age of the oldest case waiting for a reviewer, as of the last backlog check.",
		}),
	}

	intakeDepth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "queue_depth_intake",
		Help: "Cases waiting for a reviewer.",
	}, func() float64 {
		intake, _ := depths()
		return float64(intake)
	})
	dispatchDepth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "queue_depth_dispatch",
		Help: "Cases waiting for a worker.",
	}, func() float64 {
		_, dispatch := depths()
		return float64(dispatch)
	})

	reg.MustRegister(
		m.CasesDispatched,
		m.CasesRequeued,
		m.CasesDelivered,
		m.CasesAbandoned,
		m.Retries,
		m.CaseLatency,
		m.OldestWaiting,
		intakeDepth,
		dispatchDepth,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so the worker package stays import-free.
func (m *Metrics) WorkerHooks() (
	onDelivered func(code string, latency time.Duration),
	onAbandoned func(reason string, latency time.Duration),
	onRetry func(stage string),
) {
	onDelivered = func(code string, latency time.Duration) {
		m.CasesDelivered.WithLabelValues(code).Inc()
		m.CaseLatency.Observe(latency.Seconds())
	}
	onAbandoned = func(reason string, latency time.Duration) {
		m.CasesAbandoned.WithLabelValues(reason).Inc()
		m.CaseLatency.Observe(latency.Seconds())
	}
	onRetry = func(stage string) {
		m.Retries.WithLabelValues(stage).Inc()
	}
	return
}

// ServiceHooks returns the callbacks used by the triage review service.
func (m *Metrics) ServiceHooks() (onDispatched func(code string), onRequeued func()) {
	onDispatched = func(code string) {
		m.CasesDispatched.WithLabelValues(code).Inc()
	}
	onRequeued = func() {
		m.CasesRequeued.Inc()
	}
	return
}

// BacklogHook returns the callback used by the backlog monitor.
func (m *Metrics) BacklogHook() func(oldest time.Duration) {
	return func(oldest time.Duration) {
		m.OldestWaiting.Set(oldest.Seconds())
	}
}
