package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/vision-status/internal/cell"
	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/vision"
)

// MetricsRecorder counts decoded updates and rejected payloads per channel.
type MetricsRecorder interface {
	ObserveTelemetryUpdate(ch Channel)
	ObserveDecodeError(ch Channel)
}

type bindConfig struct {
	codec   Codec
	log     logging.Logger
	metrics MetricsRecorder
}

// BindOption customises Bind and BindInputs.
type BindOption func(*bindConfig)

// WithCodec selects the payload codec. JSON is the default.
func WithCodec(c Codec) BindOption {
	return func(cfg *bindConfig) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithLogger sets the logger used for rejected payloads.
func WithLogger(l logging.Logger) BindOption {
	return func(cfg *bindConfig) {
		if l != nil {
			cfg.log = l
		}
	}
}

// WithMetricsRecorder attaches a recorder for update and decode error counts.
func WithMetricsRecorder(m MetricsRecorder) BindOption {
	return func(cfg *bindConfig) {
		cfg.metrics = m
	}
}

func newBindConfig(opts []BindOption) bindConfig {
	cfg := bindConfig{codec: JSON, log: logging.Noop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Bind routes every payload on ch into c. A payload that fails to decode is
// logged and dropped; the cell keeps its previous value.
func Bind[T any](src Source, ch Channel, c *cell.Cell[T], opts ...BindOption) error {
	cfg := newBindConfig(opts)
	return bind(src, ch, c, cfg)
}

func bind[T any](src Source, ch Channel, c *cell.Cell[T], cfg bindConfig) error {
	if src == nil || c == nil {
		return fmt.Errorf("bind %s: nil source or cell", ch)
	}
	log := cfg.log.With(logging.String("channel", string(ch)))
	err := src.Subscribe(ch, func(payload []byte) {
		var v T
		if err := cfg.codec.Unmarshal(payload, &v); err != nil {
			if cfg.metrics != nil {
				cfg.metrics.ObserveDecodeError(ch)
			}
			log.Warn(context.Background(), "dropping undecodable telemetry payload",
				logging.String("codec", cfg.codec.Name()),
				logging.Int("size", len(payload)),
				logging.Err(err),
			)
			return
		}
		if cfg.metrics != nil {
			cfg.metrics.ObserveTelemetryUpdate(ch)
		}
		c.Set(v)
	})
	if err != nil {
		return fmt.Errorf("bind %s: %w", ch, err)
	}
	return nil
}

// BindInputs binds every engine input to its channel on src. Channels that
// fail to bind are reported together; the rest stay bound and the failed
// cells keep their defaults.
func BindInputs(src Source, in *vision.Inputs, opts ...BindOption) error {
	cfg := newBindConfig(opts)
	return errors.Join(
		bind(src, ChannelDetectionState, in.DetectionState, cfg),
		bind(src, ChannelUserAvoidanceEnabled, in.UserAvoidanceEnabled, cfg),
		bind(src, ChannelFlightMode, in.FlightMode, cfg),
		bind(src, ChannelActiveTrackMode, in.ActiveTrackMode, cfg),
		bind(src, ChannelDrawStatus, in.DrawStatus, cfg),
		bind(src, ChannelDrawHeadingMode, in.DrawHeadingMode, cfg),
		bind(src, ChannelTapFlyMode, in.TapFlyMode, cfg),
		bind(src, ChannelRadarFrontOpen, in.RadarFrontOpen, cfg),
		bind(src, ChannelRadarBackOpen, in.RadarBackOpen, cfg),
		bind(src, ChannelRadarLeftOpen, in.RadarLeftOpen, cfg),
		bind(src, ChannelRadarRightOpen, in.RadarRightOpen, cfg),
		bind(src, ChannelProductModel, in.ProductModel, cfg),
		bind(src, ChannelOmniHorizontalEnabled, in.OmniHorizontalEnabled, cfg),
		bind(src, ChannelOmniVerticalEnabled, in.OmniVerticalEnabled, cfg),
		bind(src, ChannelLandingProtectionEnabled, in.LandingProtectionEnabled, cfg),
		bind(src, ChannelOmniAvoidanceState, in.OmniAvoidanceState, cfg),
		bind(src, ChannelConnected, in.Connected, cfg),
	)
}
