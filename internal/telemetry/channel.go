// Package telemetry feeds aircraft signals from a transport into the cells
// read by the vision engine.
package telemetry

import (
	"errors"
	"fmt"
	"slices"
)

// Channel names one telemetry signal. Transports map it onto their own
// addressing, e.g. an MQTT topic suffix.
type Channel string

const (
	ChannelDetectionState           Channel = "flight_assistant/detection_state"
	ChannelUserAvoidanceEnabled     Channel = "flight_assistant/collision_avoidance_enabled"
	ChannelFlightMode               Channel = "flight_controller/flight_mode"
	ChannelActiveTrackMode          Channel = "flight_assistant/active_track_mode"
	ChannelDrawStatus               Channel = "flight_assistant/draw_status"
	ChannelDrawHeadingMode          Channel = "flight_assistant/draw_heading_mode"
	ChannelTapFlyMode               Channel = "flight_assistant/tap_fly_mode"
	ChannelRadarFrontOpen           Channel = "radar/front_open"
	ChannelRadarBackOpen            Channel = "radar/back_open"
	ChannelRadarLeftOpen            Channel = "radar/left_open"
	ChannelRadarRightOpen           Channel = "radar/right_open"
	ChannelProductModel             Channel = "product/model"
	ChannelOmniHorizontalEnabled    Channel = "flight_assistant/omni_horizontal_avoidance_enabled"
	ChannelOmniVerticalEnabled      Channel = "flight_assistant/omni_vertical_avoidance_enabled"
	ChannelLandingProtectionEnabled Channel = "flight_assistant/landing_protection_enabled"
	ChannelOmniAvoidanceState       Channel = "flight_assistant/omni_avoidance_state"
	ChannelConnected                Channel = "product/connection"
)

var (
	// ErrUnknownChannel is returned for channel names outside Channels().
	ErrUnknownChannel = errors.New("unknown telemetry channel")
	// ErrSourceClosed is returned when subscribing to a closed source.
	ErrSourceClosed = errors.New("telemetry source closed")
)

var channels = []Channel{
	ChannelDetectionState,
	ChannelUserAvoidanceEnabled,
	ChannelFlightMode,
	ChannelActiveTrackMode,
	ChannelDrawStatus,
	ChannelDrawHeadingMode,
	ChannelTapFlyMode,
	ChannelRadarFrontOpen,
	ChannelRadarBackOpen,
	ChannelRadarLeftOpen,
	ChannelRadarRightOpen,
	ChannelProductModel,
	ChannelOmniHorizontalEnabled,
	ChannelOmniVerticalEnabled,
	ChannelLandingProtectionEnabled,
	ChannelOmniAvoidanceState,
	ChannelConnected,
}

// Channels lists every channel the engine consumes.
func Channels() []Channel {
	return slices.Clone(channels)
}

// Validate reports ErrUnknownChannel for names outside Channels().
func (c Channel) Validate() error {
	if slices.Contains(channels, c) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownChannel, string(c))
}

func (c Channel) String() string { return string(c) }
