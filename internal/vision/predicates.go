package vision

import "github.com/signalsfoundry/vision-status/model"

// EnablementInputs are the flight-state signals that decide whether the
// vision system can avoid obstacles at all.
type EnablementInputs struct {
	FlightMode  model.FlightMode
	ActiveTrack model.ActiveTrackMode
	TapFly      model.TapFlyMode
	DrawStatus  model.DrawStatus
	DrawHeading model.DrawHeadingMode
}

// SystemEnabled reports whether obstacle avoidance is available in the
// current flight state.
func SystemEnabled(in EnablementInputs) bool {
	switch {
	case in.FlightMode.IsAttitude(),
		in.FlightMode == model.FlightModeGPSSport,
		in.FlightMode == model.FlightModeAutoLanding:
		return false
	case !activeTrackAllowsAvoidance(in.ActiveTrack):
		return false
	case in.TapFly == model.TapFlyFree:
		return false
	}
	return drawAssistanceEnabled(in.DrawStatus, in.DrawHeading)
}

func activeTrackAllowsAvoidance(m model.ActiveTrackMode) bool {
	switch m {
	case model.ActiveTrackTrace,
		model.ActiveTrackQuickShot,
		model.ActiveTrackSpotlight,
		model.ActiveTrackSpotlightPro:
		return true
	}
	return false
}

// drawAssistanceEnabled: while a drawn path is running, avoidance only works
// when the aircraft faces its direction of travel.
func drawAssistanceEnabled(status model.DrawStatus, heading model.DrawHeadingMode) bool {
	if status.IsRunning() {
		return heading == model.DrawHeadingForward
	}
	return true
}
