package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/vision"
	"github.com/signalsfoundry/vision-status/model"
)

const testScript = `
frames:
  - channel: product/connection
    value: true
  - after: 10ms
    channel: product/model
    value: MAVIC_2_ENTERPRISE
  - after: 10ms
    channel: flight_assistant/detection_state
    value:
      position: TAIL
      disabled: true
`

func TestLoadReplay(t *testing.T) {
	script, err := LoadReplay(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	if len(script.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(script.Frames))
	}
	if script.Frames[1].After != 10*time.Millisecond {
		t.Fatalf("After = %v, want 10ms", script.Frames[1].After)
	}
	if script.Frames[2].Channel != ChannelDetectionState {
		t.Fatalf("Channel = %q, want %q", script.Frames[2].Channel, ChannelDetectionState)
	}
}

func TestLoadReplayRejectsUnknownChannel(t *testing.T) {
	_, err := LoadReplay(strings.NewReader("frames:\n  - channel: bogus\n    value: 1\n"))
	if !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("LoadReplay error = %v, want ErrUnknownChannel", err)
	}
}

func TestLoadReplayEmpty(t *testing.T) {
	script, err := LoadReplay(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	if len(script.Frames) != 0 {
		t.Fatalf("frames = %d, want 0", len(script.Frames))
	}
}

func TestPlayerAcceleratedDrivesEngine(t *testing.T) {
	script, err := LoadReplay(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	src := NewLocalSource()
	e := vision.New(vision.NewInputs(), logging.Noop())
	if err := BindInputs(src, e.Inputs()); err != nil {
		t.Fatalf("BindInputs: %v", err)
	}
	e.Start()
	t.Cleanup(e.Close)

	var played []Channel
	p := NewPlayer(script, src, JSON, Accelerated, logging.Noop())
	p.AddListener(func(f Frame) { played = append(played, f.Channel) })
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(played) != 3 {
		t.Fatalf("played %d frames, want 3", len(played))
	}
	if got := e.Status().Get(); got != model.VisionOmniDisabled {
		t.Fatalf("status = %v, want OMNI_DISABLED", got)
	}
}

func TestPlayerRealTimeHonoursCancel(t *testing.T) {
	script := &Script{Frames: []Frame{{After: time.Hour, Channel: ChannelConnected, Value: true}}}
	p := NewPlayer(script, NewLocalSource(), nil, RealTime, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run error = %v, want DeadlineExceeded", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("accelerated"); err != nil || m != Accelerated {
		t.Fatalf("ParseMode(accelerated) = %v, %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != RealTime {
		t.Fatalf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("warp"); err == nil {
		t.Fatalf("ParseMode(warp) error = nil")
	}
}
