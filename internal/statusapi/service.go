// Package statusapi serves the aggregated vision status over gRPC.
package statusapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/vision"
	"github.com/signalsfoundry/vision-status/internal/warning"
	"github.com/signalsfoundry/vision-status/model"
)

// Service implements StatusServer on top of a vision engine.
type Service struct {
	engine *vision.Engine
	sender *warning.Sender
	log    logging.Logger
	now    func() time.Time
}

// NewService returns a Service. sender may be nil, in which case SendWarning
// fails with FailedPrecondition.
func NewService(engine *vision.Engine, sender *warning.Sender, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{
		engine: engine,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// GetStatus returns the current status snapshot.
func (s *Service) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.snapshot(s.engine.Status().Get())
	if err != nil {
		return nil, ToStatusError(err)
	}
	logging.FromContext(ctx, s.log).Debug(ctx, "status served")
	return snap, nil
}

// WatchStatus sends the current snapshot followed by one snapshot per status
// change. The stream ends when the client leaves or the engine closes.
func (s *Service) WatchStatus(_ *emptypb.Empty, stream StatusWatchServer) error {
	ctx := stream.Context()
	log := logging.FromContext(ctx, s.log)

	sub := s.engine.Status().Subscribe()
	defer sub.Close()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			log.Debug(ctx, "status watcher left", logging.Int("sent", sent))
			return nil
		case status, ok := <-sub.C():
			if !ok {
				return nil
			}
			snap, err := s.snapshot(status)
			if err != nil {
				return ToStatusError(err)
			}
			if err := stream.Send(snap); err != nil {
				return err
			}
			sent++
		}
	}
}

// SendWarning publishes a vision warning. The request carries "reason"
// (required) and optionally "user_avoidance_enabled"; when the flag is absent
// the engine's current value is used.
func (s *Service) SendWarning(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	fields := req.GetFields()
	reason := strings.TrimSpace(fields["reason"].GetStringValue())
	if reason == "" {
		return nil, ToStatusError(fmt.Errorf("%w: reason is required", ErrInvalidRequest))
	}

	enabled := s.engine.UserAvoidanceEnabled().Get()
	if v, ok := fields["user_avoidance_enabled"]; ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return nil, ToStatusError(fmt.Errorf("%w: user_avoidance_enabled must be a bool", ErrInvalidRequest))
		}
		enabled = b.BoolValue
	}

	ctx, span := StartChildSpan(ctx, "VisionStatus/SendWarning",
		attribute.String("warning.reason", reason),
		attribute.Bool("user_avoidance_enabled", enabled),
	)
	defer span.End()

	if s.sender == nil {
		return nil, ToStatusError(warning.ErrNoDispatcher)
	}
	if err := <-s.sender.Send(ctx, reason, enabled); err != nil {
		span.RecordError(err)
		return nil, ToStatusError(fmt.Errorf("%w: %w", ErrWarningNotDelivered, err))
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) snapshot(status model.VisionSystemStatus) (*structpb.Struct, error) {
	sensors := make(map[string]interface{})
	for _, st := range s.engine.SensorStatuses() {
		sensors[st.Position.String()] = st.Status.String()
	}
	return structpb.NewStruct(map[string]interface{}{
		"status":                 status.String(),
		"user_avoidance_enabled": s.engine.UserAvoidanceEnabled().Get(),
		"vision_supported":       s.engine.VisionSupported().Get(),
		"omni_supported":         s.engine.OmnidirectionalSupported().Get(),
		"sensors":                sensors,
		"observed_at":            s.now().UTC().Format(time.RFC3339Nano),
	})
}
