package model

// FlightMode is the flight controller's current mode.
type FlightMode int

const (
	FlightModeUnknown FlightMode = iota
	FlightModeManual
	FlightModeAtti
	FlightModeAttiCourseLock
	FlightModeAttiHover
	FlightModeAttiLimited
	FlightModeAttiLanding
	FlightModeHover
	FlightModeGPSBlake
	FlightModeGPSAtti
	FlightModeGPSAttiWristband
	FlightModeGPSCourseLock
	FlightModeGPSHomeLock
	FlightModeGPSHotPoint
	FlightModeGPSSport
	FlightModeGPSNovice
	FlightModeGPSWaypoint
	FlightModeGPSFollowMe
	FlightModeAssistedTakeoff
	FlightModeAutoTakeoff
	FlightModeAutoLanding
	FlightModeConfirmLanding
	FlightModeGoHome
	FlightModeClickGo
	FlightModeJoystick
	FlightModeCinematic
	FlightModeDraw
	FlightModeActiveTrack
	FlightModeTapFly
	FlightModeTerrainFollow
	FlightModeTripod
	FlightModeTrackSpotlight
	FlightModeMotorsJustStarted
)

var flightModes = newEnumTable(FlightModeUnknown, map[FlightMode]string{
	FlightModeUnknown:           "UNKNOWN",
	FlightModeManual:            "MANUAL",
	FlightModeAtti:              "ATTI",
	FlightModeAttiCourseLock:    "ATTI_COURSE_LOCK",
	FlightModeAttiHover:         "ATTI_HOVER",
	FlightModeAttiLimited:       "ATTI_LIMITED",
	FlightModeAttiLanding:       "ATTI_LANDING",
	FlightModeHover:             "HOVER",
	FlightModeGPSBlake:          "GPS_BLAKE",
	FlightModeGPSAtti:           "GPS_ATTI",
	FlightModeGPSAttiWristband:  "GPS_ATTI_WRISTBAND",
	FlightModeGPSCourseLock:     "GPS_COURSE_LOCK",
	FlightModeGPSHomeLock:       "GPS_HOME_LOCK",
	FlightModeGPSHotPoint:       "GPS_HOT_POINT",
	FlightModeGPSSport:          "GPS_SPORT",
	FlightModeGPSNovice:         "GPS_NOVICE",
	FlightModeGPSWaypoint:       "GPS_WAYPOINT",
	FlightModeGPSFollowMe:       "GPS_FOLLOW_ME",
	FlightModeAssistedTakeoff:   "ASSISTED_TAKEOFF",
	FlightModeAutoTakeoff:       "AUTO_TAKEOFF",
	FlightModeAutoLanding:       "AUTO_LANDING",
	FlightModeConfirmLanding:    "CONFIRM_LANDING",
	FlightModeGoHome:            "GO_HOME",
	FlightModeClickGo:           "CLICK_GO",
	FlightModeJoystick:          "JOYSTICK",
	FlightModeCinematic:         "CINEMATIC",
	FlightModeDraw:              "DRAW",
	FlightModeActiveTrack:       "ACTIVE_TRACK",
	FlightModeTapFly:            "TAP_FLY",
	FlightModeTerrainFollow:     "TERRAIN_FOLLOW",
	FlightModeTripod:            "TRIPOD",
	FlightModeTrackSpotlight:    "TRACK_SPOTLIGHT",
	FlightModeMotorsJustStarted: "MOTORS_JUST_STARTED",
}, nil)

func (m FlightMode) String() string { return flightModes.name(m) }

// ParseFlightMode returns FlightModeUnknown for unrecognised names.
func ParseFlightMode(s string) FlightMode { return flightModes.parse(s) }

func (m FlightMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *FlightMode) UnmarshalText(b []byte) error {
	*m = ParseFlightMode(string(b))
	return nil
}

// IsAttitude reports whether m is one of the attitude modes, which fly
// without GPS-assisted position hold.
func (m FlightMode) IsAttitude() bool {
	switch m {
	case FlightModeAtti,
		FlightModeAttiCourseLock,
		FlightModeAttiHover,
		FlightModeAttiLimited,
		FlightModeAttiLanding:
		return true
	}
	return false
}

// ActiveTrackMode is the sub-mode of subject following.
type ActiveTrackMode int

const (
	ActiveTrackUnknown ActiveTrackMode = iota
	ActiveTrackTrace
	ActiveTrackProfile
	ActiveTrackSpotlight
	ActiveTrackSpotlightPro
	ActiveTrackQuickShot
)

var activeTrackModes = newEnumTable(ActiveTrackUnknown, map[ActiveTrackMode]string{
	ActiveTrackUnknown:      "UNKNOWN",
	ActiveTrackTrace:        "TRACE",
	ActiveTrackProfile:      "PROFILE",
	ActiveTrackSpotlight:    "SPOTLIGHT",
	ActiveTrackSpotlightPro: "SPOTLIGHT_PRO",
	ActiveTrackQuickShot:    "QUICK_SHOT",
}, nil)

func (m ActiveTrackMode) String() string { return activeTrackModes.name(m) }

func ParseActiveTrackMode(s string) ActiveTrackMode { return activeTrackModes.parse(s) }

func (m ActiveTrackMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ActiveTrackMode) UnmarshalText(b []byte) error {
	*m = ParseActiveTrackMode(string(b))
	return nil
}

// TapFlyMode is the direction policy of tap-to-fly navigation.
type TapFlyMode int

const (
	TapFlyUnknown TapFlyMode = iota
	TapFlyForward
	TapFlyBackward
	TapFlyFree
)

var tapFlyModes = newEnumTable(TapFlyUnknown, map[TapFlyMode]string{
	TapFlyUnknown:  "UNKNOWN",
	TapFlyForward:  "FORWARD",
	TapFlyBackward: "BACKWARD",
	TapFlyFree:     "FREE",
}, nil)

func (m TapFlyMode) String() string { return tapFlyModes.name(m) }

func ParseTapFlyMode(s string) TapFlyMode { return tapFlyModes.parse(s) }

func (m TapFlyMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *TapFlyMode) UnmarshalText(b []byte) error {
	*m = ParseTapFlyMode(string(b))
	return nil
}

// DrawStatus is the state of the draw-assistance path feature.
type DrawStatus int

const (
	DrawStatusOther DrawStatus = iota
	DrawStatusStartAuto
	DrawStatusStartManual
	DrawStatusPause
)

var drawStatuses = newEnumTable(DrawStatusOther, map[DrawStatus]string{
	DrawStatusOther:       "OTHER",
	DrawStatusStartAuto:   "START_AUTO",
	DrawStatusStartManual: "START_MANUAL",
	DrawStatusPause:       "PAUSE",
}, nil)

func (s DrawStatus) String() string { return drawStatuses.name(s) }

func ParseDrawStatus(s string) DrawStatus { return drawStatuses.parse(s) }

func (s DrawStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DrawStatus) UnmarshalText(b []byte) error {
	*s = ParseDrawStatus(string(b))
	return nil
}

// IsRunning reports whether a drawn path is being flown or is paused mid-path.
func (s DrawStatus) IsRunning() bool {
	switch s {
	case DrawStatusStartAuto, DrawStatusStartManual, DrawStatusPause:
		return true
	}
	return false
}

// DrawHeadingMode is the aircraft heading policy while flying a drawn path.
type DrawHeadingMode int

const (
	DrawHeadingForward DrawHeadingMode = iota
	DrawHeadingFree
	DrawHeadingUnknown
)

var drawHeadingModes = newEnumTable(DrawHeadingUnknown, map[DrawHeadingMode]string{
	DrawHeadingForward: "FORWARD",
	DrawHeadingFree:    "FREE",
	DrawHeadingUnknown: "UNKNOWN",
}, nil)

func (m DrawHeadingMode) String() string { return drawHeadingModes.name(m) }

func ParseDrawHeadingMode(s string) DrawHeadingMode { return drawHeadingModes.parse(s) }

func (m DrawHeadingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *DrawHeadingMode) UnmarshalText(b []byte) error {
	*m = ParseDrawHeadingMode(string(b))
	return nil
}
