// Package warning publishes obstacle-avoidance notices to the flight
// warning system.
package warning

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/vision-status/internal/logging"
)

const tracerName = "github.com/signalsfoundry/vision-status/internal/warning"

// Action tells the warning system whether to show or clear a notice.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionRemove Action = "REMOVE"
)

const (
	CategoryVision    = "VISION"
	TypeAutoDisappear = "AUTO_DISAPPEAR"
)

// ErrNoDispatcher is reported when a Sender has nowhere to deliver.
var ErrNoDispatcher = errors.New("no warning dispatcher configured")

// Warning is one record handed to the warning system.
type Warning struct {
	Category  string    `json:"category" msgpack:"category"`
	Action    Action    `json:"action" msgpack:"action"`
	Type      string    `json:"type" msgpack:"type"`
	Reason    string    `json:"reason" msgpack:"reason"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// New builds the vision warning for reason. An enabled avoidance switch
// clears the notice; a disabled one raises it.
func New(reason string, userAvoidanceEnabled bool, now time.Time) Warning {
	action := ActionInsert
	if userAvoidanceEnabled {
		action = ActionRemove
	}
	return Warning{
		Category:  CategoryVision,
		Action:    action,
		Type:      TypeAutoDisappear,
		Reason:    reason,
		Timestamp: now,
	}
}

// Dispatcher delivers a warning to the warning system.
type Dispatcher interface {
	Dispatch(ctx context.Context, w Warning) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, w Warning) error

func (f DispatcherFunc) Dispatch(ctx context.Context, w Warning) error { return f(ctx, w) }

// MetricsRecorder counts warnings by action and outcome ("ok" or "error").
type MetricsRecorder interface {
	ObserveWarning(action, outcome string)
}

// Sender publishes warnings asynchronously. Failures are reported once on
// the returned channel and are never retried.
type Sender struct {
	dispatcher Dispatcher
	log        logging.Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

// Option customises a Sender.
type Option func(*Sender)

// WithMetricsRecorder attaches a recorder for warning outcomes.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Sender) {
		s.metrics = m
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSender returns a Sender that delivers through d.
func NewSender(d Dispatcher, log logging.Logger, opts ...Option) *Sender {
	if log == nil {
		log = logging.Noop()
	}
	s := &Sender{
		dispatcher: d,
		log:        log.With(logging.String("component", "warning_sender")),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Send publishes the vision warning for reason. The returned channel yields
// the delivery result exactly once and is then closed.
func (s *Sender) Send(ctx context.Context, reason string, userAvoidanceEnabled bool) <-chan error {
	w := New(reason, userAvoidanceEnabled, s.now())
	out := make(chan error, 1)

	go func() {
		defer close(out)
		out <- s.dispatch(ctx, w)
	}()
	return out
}

func (s *Sender) dispatch(ctx context.Context, w Warning) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Warning/Dispatch",
		trace.WithAttributes(
			attribute.String("warning.category", w.Category),
			attribute.String("warning.action", string(w.Action)),
			attribute.String("warning.reason", w.Reason),
		),
	)
	defer span.End()

	var err error
	if s.dispatcher == nil {
		err = ErrNoDispatcher
	} else {
		err = s.dispatcher.Dispatch(ctx, w)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn(ctx, "warning dispatch failed",
			logging.String("action", string(w.Action)),
			logging.String("reason", w.Reason),
			logging.Err(err),
		)
	} else {
		s.log.Debug(ctx, "warning dispatched",
			logging.String("action", string(w.Action)),
			logging.String("reason", w.Reason),
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveWarning(string(w.Action), outcome)
	}
	return err
}
