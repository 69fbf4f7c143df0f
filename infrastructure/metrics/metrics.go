// Package metrics exports capability decisions as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
)

// Ensure implementation satisfies the interface.
var _ ports.DecisionObserver = (*Recorder)(nil)

// Recorder counts decisions and events. It is a DecisionObserver.
type Recorder struct {
	registry *prometheus.Registry

	DecisionsTotal *prometheus.CounterVec
	EventsTotal    *prometheus.CounterVec
	GuestDuration  prometheus.Histogram
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runguard",
			Name:      "capability_decisions_total",
			Help:      "Capability checks by resource class and decision.",
		}, []string{"class", "decision"}),

		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runguard",
			Name:      "events_total",
			Help:      "Operation notifications received by kind.",
		}, []string{"kind"}),

		GuestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runguard",
			Name:      "guest_duration_seconds",
			Help:      "Wall time of monitored program runs.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
	}
}

// OnDecision implements ports.DecisionObserver.
func (r *Recorder) OnDecision(req entities.CapabilityRequest, decision entities.Decision) {
	r.DecisionsTotal.WithLabelValues(req.Class.String(), decision.String()).Inc()
}

// ObserveEvent counts one notification.
func (r *Recorder) ObserveEvent(kind entities.EventKind) {
	r.EventsTotal.WithLabelValues(string(kind)).Inc()
}

// ObserveRun records the duration of a program run.
func (r *Recorder) ObserveRun(d time.Duration) {
	r.GuestDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
