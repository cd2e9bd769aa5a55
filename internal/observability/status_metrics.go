package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/vision-status/internal/telemetry"
	"github.com/signalsfoundry/vision-status/model"
)

// StatusCollector exposes vision engine, telemetry and warning metrics. It
// satisfies the metrics recorder interfaces of the vision, telemetry and
// warning packages.
type StatusCollector struct {
	gatherer prometheus.Gatherer

	Status         *prometheus.GaugeVec
	Recomputations prometheus.Counter
	Transitions    *prometheus.CounterVec
	Updates        *prometheus.CounterVec
	DecodeErrors   *prometheus.CounterVec
	Warnings       *prometheus.CounterVec
}

// NewStatusCollector registers status metrics against the provided registerer.
func NewStatusCollector(reg prometheus.Registerer) (*StatusCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	statusGauge, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vision_status",
		Help: "Current aggregated vision status; 1 for the active status, 0 otherwise.",
	}, []string{"status"}), "vision_status")
	if err != nil {
		return nil, err
	}

	recomputations, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vision_recomputations_total",
		Help: "Number of times the vision status was recomputed.",
	}), "vision_recomputations_total")
	if err != nil {
		return nil, err
	}

	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vision_status_transitions_total",
		Help: "Vision status changes, labeled by previous and new status.",
	}, []string{"from", "to"}), "vision_status_transitions_total")
	if err != nil {
		return nil, err
	}

	updates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_updates_total",
		Help: "Decoded telemetry updates applied to engine inputs, labeled by channel.",
	}, []string{"channel"}), "telemetry_updates_total")
	if err != nil {
		return nil, err
	}

	decodeErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_decode_errors_total",
		Help: "Telemetry payloads dropped because they could not be decoded, labeled by channel.",
	}, []string{"channel"}), "telemetry_decode_errors_total")
	if err != nil {
		return nil, err
	}

	warnings, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vision_warnings_total",
		Help: "Vision warnings sent to the warning system, labeled by action and outcome.",
	}, []string{"action", "outcome"}), "vision_warnings_total")
	if err != nil {
		return nil, err
	}

	c := &StatusCollector{
		gatherer:       gatherer,
		Status:         statusGauge,
		Recomputations: recomputations,
		Transitions:    transitions,
		Updates:        updates,
		DecodeErrors:   decodeErrors,
		Warnings:       warnings,
	}
	c.setStatus(model.VisionNormal)
	return c, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *StatusCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *StatusCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// ObserveRecompute counts a recomputation and refreshes the status gauge.
func (c *StatusCollector) ObserveRecompute(status model.VisionSystemStatus) {
	if c == nil {
		return
	}
	if c.Recomputations != nil {
		c.Recomputations.Inc()
	}
	c.setStatus(status)
}

// ObserveTransition counts a status change.
func (c *StatusCollector) ObserveTransition(from, to model.VisionSystemStatus) {
	if c == nil || c.Transitions == nil {
		return
	}
	c.Transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// ObserveTelemetryUpdate counts an applied telemetry update.
func (c *StatusCollector) ObserveTelemetryUpdate(ch telemetry.Channel) {
	if c == nil || c.Updates == nil {
		return
	}
	c.Updates.WithLabelValues(string(ch)).Inc()
}

// ObserveDecodeError counts a dropped telemetry payload.
func (c *StatusCollector) ObserveDecodeError(ch telemetry.Channel) {
	if c == nil || c.DecodeErrors == nil {
		return
	}
	c.DecodeErrors.WithLabelValues(string(ch)).Inc()
}

// ObserveWarning counts a warning delivery attempt.
func (c *StatusCollector) ObserveWarning(action, outcome string) {
	if c == nil || c.Warnings == nil {
		return
	}
	c.Warnings.WithLabelValues(action, outcome).Inc()
}

func (c *StatusCollector) setStatus(current model.VisionSystemStatus) {
	if c.Status == nil {
		return
	}
	for _, s := range model.VisionSystemStatuses() {
		v := 0.0
		if s == current {
			v = 1
		}
		c.Status.WithLabelValues(s.String()).Set(v)
	}
}
