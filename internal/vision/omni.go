package vision

import "github.com/signalsfoundry/vision-status/model"

// OmniInputs feed the horizontal/vertical status of dual-axis products.
type OmniInputs struct {
	LandingProtectionEnabled bool
	HorizontalEnabled        bool
	VerticalEnabled          bool
	State                    model.OmniAvoidanceState
}

// RadarOpen holds the per-edge radar switches of Mavic 2 products.
type RadarOpen struct {
	Front, Back, Left, Right bool
}

func (r RadarOpen) all() bool      { return r.Front && r.Back && r.Left && r.Right }
func (r RadarOpen) noseTail() bool { return r.Front && r.Back }

// OmniAxisStatus combines the horizontal and vertical subsystems of a
// dual-axis product.
func OmniAxisStatus(in OmniInputs) model.VisionSystemStatus {
	horizontal := axisStatus(
		in.LandingProtectionEnabled || in.HorizontalEnabled,
		in.State.IsHorizontalEnabled(),
		in.State.IsHorizontalWorking(),
	)
	// The vertical axis is gated on the horizontal working flag. This matches
	// the behaviour shipped on the aircraft; see DESIGN.md before changing it.
	vertical := axisStatus(
		in.LandingProtectionEnabled || in.VerticalEnabled,
		in.State.IsVerticalEnabled(),
		in.State.IsHorizontalWorking(),
	)

	switch {
	case horizontal == model.VisionNormal && vertical == model.VisionNormal:
		return model.VisionOmniAll
	case horizontal == model.VisionNormal:
		return model.VisionOmniHorizontal
	case vertical == model.VisionNormal:
		return model.VisionOmniVertical
	default:
		return model.VisionOmniClosed
	}
}

func axisStatus(switchedOn, enabled, working bool) model.VisionSystemStatus {
	switch {
	case switchedOn && enabled && working:
		return model.VisionNormal
	case switchedOn && enabled:
		return model.VisionDisabled
	default:
		return model.VisionClosed
	}
}

// omnidirectionalStatus is the Mavic 2 series rule. Enterprise aircraft show
// front/back sensing when either the sensors report NORMAL or the radars are
// open; consumer aircraft need both.
func omnidirectionalStatus(enterprise bool, overall model.VisionSystemStatus, radar RadarOpen, sensors *statusMap) model.VisionSystemStatus {
	noseTailNormal := sensors.isNormal(model.SensorNose) && sensors.isNormal(model.SensorTail)

	if enterprise {
		switch {
		case radar.all():
			return model.VisionOmniAll
		case overall == model.VisionDisabled:
			return model.VisionOmniDisabled
		case noseTailNormal || radar.noseTail():
			return model.VisionOmniFrontBack
		default:
			return model.VisionOmniClosed
		}
	}

	switch {
	case overall == model.VisionNormal && radar.all():
		return model.VisionOmniAll
	case overall == model.VisionDisabled:
		return model.VisionOmniDisabled
	case noseTailNormal && radar.noseTail():
		return model.VisionOmniFrontBack
	default:
		return model.VisionOmniClosed
	}
}
