// Package vision aggregates aircraft telemetry into a single obstacle
// avoidance status.
package vision

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/signalsfoundry/vision-status/internal/capability"
	"github.com/signalsfoundry/vision-status/internal/cell"
	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/model"
)

// StatusMetricsRecorder receives engine activity for metrics export.
type StatusMetricsRecorder interface {
	ObserveRecompute(status model.VisionSystemStatus)
	ObserveTransition(from, to model.VisionSystemStatus)
}

// Engine recomputes the vision status whenever an input changes.
//
// All recomputation happens under mu, so the status map and the output cell
// have a single writer no matter how many telemetry producers are active.
// Observers of the Status cell run inside that critical section and must not
// set any input cell.
type Engine struct {
	in      *Inputs
	log     logging.Logger
	metrics StatusMetricsRecorder
	caps    capability.Lookup

	mu      sync.Mutex
	sensors *statusMap
	status  *cell.Cell[model.VisionSystemStatus]
	cancels []func()

	// held keeps the latest detection per position seen before Start.
	held     map[model.SensorPosition]model.DetectionState
	stopHold func()
	starting bool
	started  bool
	closed   bool

	supported *cell.Cell[bool]
	omni      *cell.Cell[bool]
}

// Option customises Engine construction.
type Option func(*Engine)

// WithMetricsRecorder attaches a recorder for recomputations and transitions.
func WithMetricsRecorder(m StatusMetricsRecorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCapabilities replaces the built-in product capability table.
func WithCapabilities(l capability.Lookup) Option {
	return func(e *Engine) {
		if l != nil {
			e.caps = l
		}
	}
}

// New builds an engine over in. Call Start to begin following the inputs.
func New(in *Inputs, log logging.Logger, opts ...Option) *Engine {
	if in == nil {
		in = NewInputs()
	}
	if log == nil {
		log = logging.Noop()
	}
	e := &Engine{
		in:      in,
		log:     log.With(logging.String("component", "vision_engine")),
		caps:    capability.DefaultTable(),
		sensors: newStatusMap(),
		status:  cell.New(model.VisionNormal),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.supported = cell.Map(in.ProductModel, e.caps.VisionSupported)
	e.omni = cell.Map(in.ProductModel, omniSupported(e.caps))
	e.held = make(map[model.SensorPosition]model.DetectionState)
	e.stopHold = in.DetectionState.Observe(e.hold)
	return e
}

func (e *Engine) hold(ds model.DetectionState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started && !e.closed {
		e.held[ds.Position] = ds
	}
}

// omniSupported falls back to the product classification when l does not
// know omnidirectional sensing.
func omniSupported(l capability.Lookup) func(model.ProductModel) bool {
	if o, ok := l.(capability.OmniLookup); ok {
		return o.OmnidirectionalSupported
	}
	return func(p model.ProductModel) bool {
		return p.IsDualAxisOmni() || p.IsMavic2Series()
	}
}

// Inputs returns the cells the engine reads.
func (e *Engine) Inputs() *Inputs { return e.in }

// Status is the aggregated vision status.
func (e *Engine) Status() *cell.Cell[model.VisionSystemStatus] { return e.status }

// UserAvoidanceEnabled mirrors the user's obstacle avoidance switch.
func (e *Engine) UserAvoidanceEnabled() *cell.Cell[bool] { return e.in.UserAvoidanceEnabled }

// VisionSupported reports whether the connected product has vision sensors.
func (e *Engine) VisionSupported() *cell.Cell[bool] { return e.supported }

// OmnidirectionalSupported reports whether the connected product senses
// obstacles in every direction.
func (e *Engine) OmnidirectionalSupported() *cell.Cell[bool] { return e.omni }

// Start subscribes to every input and computes the initial status. Detection
// updates that arrived before Start are folded in position order first. It is
// a no-op when the engine is already started or closed.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.starting || e.closed {
		e.mu.Unlock()
		return
	}
	e.starting = true
	e.mu.Unlock()

	// Registration takes each cell's notify lock, which a concurrent Set may
	// hold while waiting for mu, so mu is not held here.
	cancels := e.in.watch(func() { e.Recompute() })

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}
		return
	}
	e.cancels = cancels
	e.started = true
	held := e.held
	e.held = nil
	e.mu.Unlock()
	e.stopHold()

	status := e.recompute(held)
	e.log.Info(context.Background(), "vision engine started", logging.Stringer("status", status))
}

// Close stops following the inputs and closes the output cells.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cancels := e.cancels
	e.cancels = nil
	e.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	e.stopHold()
	e.status.Close()
	e.supported.Close()
	e.omni.Close()
}

// Recompute evaluates the current inputs, publishes the result when it
// differs from the previous status, and returns it.
func (e *Engine) Recompute() model.VisionSystemStatus {
	return e.recompute(nil)
}

func (e *Engine) recompute(held map[model.SensorPosition]model.DetectionState) model.VisionSystemStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.evaluateLocked(e.in.snapshot(), held)
	prev := e.status.Get()

	if e.metrics != nil {
		e.metrics.ObserveRecompute(next)
	}
	if next == prev {
		return next
	}

	e.log.Debug(context.Background(), "vision status changed",
		logging.Stringer("from", prev),
		logging.Stringer("to", next),
	)
	if e.metrics != nil {
		e.metrics.ObserveTransition(prev, next)
	}
	e.status.Set(next)
	return next
}

func (e *Engine) evaluateLocked(s snapshot, held map[model.SensorPosition]model.DetectionState) model.VisionSystemStatus {
	if !s.connected {
		return model.VisionNormal
	}

	systemEnabled := SystemEnabled(s.enablement)
	for _, pos := range slices.Sorted(maps.Keys(held)) {
		e.sensors.put(pos, ResolveSensor(s.userEnabled, systemEnabled, held[pos]))
	}

	// The detection cell only names one position per update; entries for the
	// other positions keep their last resolution.
	if s.detectionSeen {
		e.sensors.put(s.detection.Position, ResolveSensor(s.userEnabled, systemEnabled, s.detection))
	}

	switch {
	case s.product.IsDualAxisOmni():
		return OmniAxisStatus(s.omni)
	case !s.product.IsMavic2Series():
		return e.sensors.overall()
	default:
		return omnidirectionalStatus(s.product.IsMavic2Enterprise(), e.sensors.overall(), s.radar, e.sensors)
	}
}

// SensorStatuses returns the per-position statuses in position order.
func (e *Engine) SensorStatuses() []SensorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sensors.sorted()
}

// SensorStatus returns the last status resolved for pos.
func (e *Engine) SensorStatus(pos model.SensorPosition) (model.VisionSystemStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sensors.get(pos)
}
