package vision

import (
	"testing"

	"github.com/signalsfoundry/vision-status/model"
)

func TestOmniAxisStatus(t *testing.T) {
	tests := []struct {
		name string
		in   OmniInputs
		want model.VisionSystemStatus
	}{
		{
			name: "landing protection opens horizontal",
			in: OmniInputs{
				LandingProtectionEnabled: true,
				State:                    model.OmniAvoidanceState{HorizontalEnabled: true, HorizontalWorking: true},
			},
			want: model.VisionOmniHorizontal,
		},
		{
			name: "both axes normal",
			in: OmniInputs{
				HorizontalEnabled: true,
				VerticalEnabled:   true,
				State: model.OmniAvoidanceState{
					HorizontalEnabled: true, HorizontalWorking: true,
					VerticalEnabled: true, VerticalWorking: true,
				},
			},
			want: model.VisionOmniAll,
		},
		{
			name: "vertical gated on horizontal working flag",
			in: OmniInputs{
				VerticalEnabled: true,
				State: model.OmniAvoidanceState{
					VerticalEnabled: true, VerticalWorking: true,
				},
			},
			want: model.VisionOmniClosed,
		},
		{
			name: "vertical normal only",
			in: OmniInputs{
				VerticalEnabled: true,
				State: model.OmniAvoidanceState{
					HorizontalEnabled: true, HorizontalWorking: true,
					VerticalEnabled: true,
				},
			},
			want: model.VisionOmniVertical,
		},
		{
			name: "horizontal switched off",
			in: OmniInputs{
				State: model.OmniAvoidanceState{HorizontalEnabled: true, HorizontalWorking: true},
			},
			want: model.VisionOmniClosed,
		},
		{
			name: "horizontal not working",
			in: OmniInputs{
				HorizontalEnabled: true,
				State:             model.OmniAvoidanceState{HorizontalEnabled: true},
			},
			want: model.VisionOmniClosed,
		},
	}

	for _, tc := range tests {
		if got := OmniAxisStatus(tc.in); got != tc.want {
			t.Errorf("%s: OmniAxisStatus = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAxisStatus(t *testing.T) {
	if got := axisStatus(true, true, true); got != model.VisionNormal {
		t.Fatalf("axisStatus(on, enabled, working) = %v, want NORMAL", got)
	}
	if got := axisStatus(true, true, false); got != model.VisionDisabled {
		t.Fatalf("axisStatus(on, enabled, !working) = %v, want DISABLED", got)
	}
	if got := axisStatus(true, false, true); got != model.VisionClosed {
		t.Fatalf("axisStatus(on, !enabled, working) = %v, want CLOSED", got)
	}
	if got := axisStatus(false, true, true); got != model.VisionClosed {
		t.Fatalf("axisStatus(off, enabled, working) = %v, want CLOSED", got)
	}
}

func TestOmnidirectionalStatus(t *testing.T) {
	allOpen := RadarOpen{Front: true, Back: true, Left: true, Right: true}
	noseTailOpen := RadarOpen{Front: true, Back: true}

	noseTailNormal := newStatusMap()
	noseTailNormal.put(model.SensorNose, model.VisionNormal)
	noseTailNormal.put(model.SensorTail, model.VisionNormal)

	noseOnly := newStatusMap()
	noseOnly.put(model.SensorNose, model.VisionNormal)

	tests := []struct {
		name       string
		enterprise bool
		overall    model.VisionSystemStatus
		radar      RadarOpen
		sensors    *statusMap
		want       model.VisionSystemStatus
	}{
		{name: "enterprise all open ignores disabled", enterprise: true, overall: model.VisionDisabled, radar: allOpen, sensors: noseOnly, want: model.VisionOmniAll},
		{name: "enterprise disabled", enterprise: true, overall: model.VisionDisabled, radar: noseTailOpen, sensors: noseTailNormal, want: model.VisionOmniDisabled},
		{name: "enterprise radar only", enterprise: true, overall: model.VisionClosed, radar: noseTailOpen, sensors: noseOnly, want: model.VisionOmniFrontBack},
		{name: "enterprise sensors only", enterprise: true, overall: model.VisionNormal, radar: RadarOpen{}, sensors: noseTailNormal, want: model.VisionOmniFrontBack},
		{name: "enterprise nothing", enterprise: true, overall: model.VisionNormal, radar: RadarOpen{Front: true}, sensors: noseOnly, want: model.VisionOmniClosed},
		{name: "standard all open and normal", overall: model.VisionNormal, radar: allOpen, sensors: noseTailNormal, want: model.VisionOmniAll},
		{name: "standard all open but closed", overall: model.VisionClosed, radar: allOpen, sensors: noseTailNormal, want: model.VisionOmniFrontBack},
		{name: "standard disabled", overall: model.VisionDisabled, radar: allOpen, sensors: noseTailNormal, want: model.VisionOmniDisabled},
		{name: "standard radar only", overall: model.VisionNormal, radar: noseTailOpen, sensors: noseOnly, want: model.VisionOmniClosed},
		{name: "standard sensors only", overall: model.VisionNormal, radar: RadarOpen{}, sensors: noseTailNormal, want: model.VisionOmniClosed},
		{name: "standard both", overall: model.VisionNormal, radar: noseTailOpen, sensors: noseTailNormal, want: model.VisionOmniFrontBack},
	}

	for _, tc := range tests {
		if got := omnidirectionalStatus(tc.enterprise, tc.overall, tc.radar, tc.sensors); got != tc.want {
			t.Errorf("%s: omnidirectionalStatus = %v, want %v", tc.name, got, tc.want)
		}
	}
}
