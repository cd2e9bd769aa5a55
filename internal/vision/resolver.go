package vision

import "github.com/signalsfoundry/vision-status/model"

// ResolveSensor computes the status of the sensor that produced ds.
// The result is always one of VisionClosed, VisionDisabled or VisionNormal.
func ResolveSensor(userAvoidanceEnabled, systemEnabled bool, ds model.DetectionState) model.VisionSystemStatus {
	switch {
	case !userAvoidanceEnabled:
		return model.VisionClosed
	case systemEnabled && !ds.Disabled:
		return model.VisionNormal
	default:
		return model.VisionDisabled
	}
}
