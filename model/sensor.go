package model

// SensorPosition identifies the mount point of a vision sensor. Values are
// ordered by their ordinal, which is also the order aggregation visits them.
type SensorPosition uint8

const (
	SensorNose    SensorPosition = 0
	SensorTail    SensorPosition = 1
	SensorRight   SensorPosition = 2
	SensorLeft    SensorPosition = 3
	SensorUnknown SensorPosition = 255
)

var sensorPositions = newEnumTable(SensorUnknown, map[SensorPosition]string{
	SensorNose:    "NOSE",
	SensorTail:    "TAIL",
	SensorRight:   "RIGHT",
	SensorLeft:    "LEFT",
	SensorUnknown: "UNKNOWN",
}, map[string]SensorPosition{
	"FRONT": SensorNose,
	"BACK":  SensorTail,
})

func (p SensorPosition) String() string { return sensorPositions.name(p) }

// ParseSensorPosition returns SensorUnknown for unrecognised names.
func ParseSensorPosition(s string) SensorPosition { return sensorPositions.parse(s) }

func (p SensorPosition) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *SensorPosition) UnmarshalText(b []byte) error {
	*p = ParseSensorPosition(string(b))
	return nil
}

// DetectionState is a single obstacle-detection snapshot reported by one
// vision sensor.
type DetectionState struct {
	Position SensorPosition `json:"position" msgpack:"position" yaml:"position"`
	Disabled bool           `json:"disabled" msgpack:"disabled" yaml:"disabled"`

	// ObstacleDistance is the closest obstacle seen by the sensor in metres.
	// Not used by status aggregation.
	ObstacleDistance float64 `json:"obstacle_distance,omitempty" msgpack:"obstacle_distance,omitempty" yaml:"obstacle_distance,omitempty"`
	// WarningLevel is the raw sensor warning code. Not used by status aggregation.
	WarningLevel int `json:"warning_level,omitempty" msgpack:"warning_level,omitempty" yaml:"warning_level,omitempty"`
}

// DefaultDetectionState is the value held before the first detection update.
func DefaultDetectionState() DetectionState {
	return DetectionState{Position: SensorUnknown}
}
