package vision

import (
	"github.com/signalsfoundry/vision-status/internal/cell"
	"github.com/signalsfoundry/vision-status/model"
)

// Inputs holds one cell per telemetry signal the engine reads. Every cell
// starts at the value the aircraft is assumed to report before telemetry
// arrives.
type Inputs struct {
	DetectionState           *cell.Cell[model.DetectionState]
	UserAvoidanceEnabled     *cell.Cell[bool]
	FlightMode               *cell.Cell[model.FlightMode]
	ActiveTrackMode          *cell.Cell[model.ActiveTrackMode]
	DrawStatus               *cell.Cell[model.DrawStatus]
	DrawHeadingMode          *cell.Cell[model.DrawHeadingMode]
	TapFlyMode               *cell.Cell[model.TapFlyMode]
	RadarFrontOpen           *cell.Cell[bool]
	RadarBackOpen            *cell.Cell[bool]
	RadarLeftOpen            *cell.Cell[bool]
	RadarRightOpen           *cell.Cell[bool]
	ProductModel             *cell.Cell[model.ProductModel]
	OmniHorizontalEnabled    *cell.Cell[bool]
	OmniVerticalEnabled      *cell.Cell[bool]
	LandingProtectionEnabled *cell.Cell[bool]
	OmniAvoidanceState       *cell.Cell[model.OmniAvoidanceState]
	Connected                *cell.Cell[bool]
}

// NewInputs returns cells holding the pre-telemetry defaults.
func NewInputs() *Inputs {
	return &Inputs{
		DetectionState:           cell.New(model.DefaultDetectionState()),
		UserAvoidanceEnabled:     cell.New(true),
		FlightMode:               cell.New(model.FlightModeGPSAtti),
		ActiveTrackMode:          cell.New(model.ActiveTrackTrace),
		DrawStatus:               cell.New(model.DrawStatusOther),
		DrawHeadingMode:          cell.New(model.DrawHeadingForward),
		TapFlyMode:               cell.New(model.TapFlyUnknown),
		RadarFrontOpen:           cell.New(false),
		RadarBackOpen:            cell.New(false),
		RadarLeftOpen:            cell.New(false),
		RadarRightOpen:           cell.New(false),
		ProductModel:             cell.New(model.ProductUnknown),
		OmniHorizontalEnabled:    cell.New(false),
		OmniVerticalEnabled:      cell.New(false),
		LandingProtectionEnabled: cell.New(false),
		OmniAvoidanceState:       cell.New(model.OmniAvoidanceState{}),
		Connected:                cell.New(false),
	}
}

// snapshot is one read of every input. Cells are read one at a time, so a
// snapshot may mix values from before and after a concurrent update; the next
// recomputation corrects it.
type snapshot struct {
	connected     bool
	detection     model.DetectionState
	detectionSeen bool
	userEnabled   bool
	enablement    EnablementInputs
	radar         RadarOpen
	product       model.ProductModel
	omni          OmniInputs
}

func (in *Inputs) snapshot() snapshot {
	return snapshot{
		connected:     in.Connected.Get(),
		detection:     in.DetectionState.Get(),
		detectionSeen: in.DetectionState.Version() > 0,
		userEnabled:   in.UserAvoidanceEnabled.Get(),
		enablement: EnablementInputs{
			FlightMode:  in.FlightMode.Get(),
			ActiveTrack: in.ActiveTrackMode.Get(),
			TapFly:      in.TapFlyMode.Get(),
			DrawStatus:  in.DrawStatus.Get(),
			DrawHeading: in.DrawHeadingMode.Get(),
		},
		radar: RadarOpen{
			Front: in.RadarFrontOpen.Get(),
			Back:  in.RadarBackOpen.Get(),
			Left:  in.RadarLeftOpen.Get(),
			Right: in.RadarRightOpen.Get(),
		},
		product: in.ProductModel.Get(),
		omni: OmniInputs{
			LandingProtectionEnabled: in.LandingProtectionEnabled.Get(),
			HorizontalEnabled:        in.OmniHorizontalEnabled.Get(),
			VerticalEnabled:          in.OmniVerticalEnabled.Get(),
			State:                    in.OmniAvoidanceState.Get(),
		},
	}
}

// watch registers fn on every input cell and returns the cancel functions.
func (in *Inputs) watch(fn func()) []func() {
	return []func(){
		observe(in.DetectionState, fn),
		observe(in.UserAvoidanceEnabled, fn),
		observe(in.FlightMode, fn),
		observe(in.ActiveTrackMode, fn),
		observe(in.DrawStatus, fn),
		observe(in.DrawHeadingMode, fn),
		observe(in.TapFlyMode, fn),
		observe(in.RadarFrontOpen, fn),
		observe(in.RadarBackOpen, fn),
		observe(in.RadarLeftOpen, fn),
		observe(in.RadarRightOpen, fn),
		observe(in.ProductModel, fn),
		observe(in.OmniHorizontalEnabled, fn),
		observe(in.OmniVerticalEnabled, fn),
		observe(in.LandingProtectionEnabled, fn),
		observe(in.OmniAvoidanceState, fn),
		observe(in.Connected, fn),
	}
}

func observe[T any](c *cell.Cell[T], fn func()) func() {
	return c.Observe(func(T) { fn() })
}
