package model

// VisionSystemStatus is the user-facing obstacle avoidance state.
type VisionSystemStatus int

const (
	// VisionClosed means the user has switched obstacle avoidance off.
	VisionClosed VisionSystemStatus = iota
	// VisionDisabled means avoidance is on but currently unavailable.
	VisionDisabled
	VisionNormal
	VisionOmniAll
	VisionOmniFrontBack
	VisionOmniHorizontal
	VisionOmniVertical
	VisionOmniDisabled
	VisionOmniClosed
)

var visionStatuses = newEnumTable(VisionClosed, map[VisionSystemStatus]string{
	VisionClosed:         "CLOSED",
	VisionDisabled:       "DISABLED",
	VisionNormal:         "NORMAL",
	VisionOmniAll:        "OMNI_ALL",
	VisionOmniFrontBack:  "OMNI_FRONT_BACK",
	VisionOmniHorizontal: "OMNI_HORIZONTAL",
	VisionOmniVertical:   "OMNI_VERTICAL",
	VisionOmniDisabled:   "OMNI_DISABLED",
	VisionOmniClosed:     "OMNI_CLOSED",
}, nil)

func (s VisionSystemStatus) String() string { return visionStatuses.name(s) }

// ParseVisionSystemStatus returns VisionClosed for unrecognised names.
func ParseVisionSystemStatus(s string) VisionSystemStatus { return visionStatuses.parse(s) }

func (s VisionSystemStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *VisionSystemStatus) UnmarshalText(b []byte) error {
	*s = ParseVisionSystemStatus(string(b))
	return nil
}

// VisionSystemStatuses lists every status in declaration order.
func VisionSystemStatuses() []VisionSystemStatus {
	return []VisionSystemStatus{
		VisionClosed,
		VisionDisabled,
		VisionNormal,
		VisionOmniAll,
		VisionOmniFrontBack,
		VisionOmniHorizontal,
		VisionOmniVertical,
		VisionOmniDisabled,
		VisionOmniClosed,
	}
}

// OmniAvoidanceState reports capability and health of the omnidirectional
// avoidance subsystems on dual-axis products.
type OmniAvoidanceState struct {
	HorizontalEnabled bool `json:"horizontal_enabled" msgpack:"horizontal_enabled" yaml:"horizontal_enabled"`
	HorizontalWorking bool `json:"horizontal_working" msgpack:"horizontal_working" yaml:"horizontal_working"`
	VerticalEnabled   bool `json:"vertical_enabled" msgpack:"vertical_enabled" yaml:"vertical_enabled"`
	VerticalWorking   bool `json:"vertical_working" msgpack:"vertical_working" yaml:"vertical_working"`
}

func (o OmniAvoidanceState) IsHorizontalEnabled() bool { return o.HorizontalEnabled }
func (o OmniAvoidanceState) IsHorizontalWorking() bool { return o.HorizontalWorking }
func (o OmniAvoidanceState) IsVerticalEnabled() bool   { return o.VerticalEnabled }
func (o OmniAvoidanceState) IsVerticalWorking() bool   { return o.VerticalWorking }
