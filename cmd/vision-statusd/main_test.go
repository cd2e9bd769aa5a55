package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/vision-status/internal/config"
	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/statusapi"
)

const replayScript = `
frames:
  - channel: product/connection
    value: true
  - channel: product/model
    value: MATRICE_300_RTK
  - channel: flight_assistant/landing_protection_enabled
    value: true
  - channel: flight_assistant/omni_avoidance_state
    value:
      horizontal_enabled: true
      horizontal_working: true
      vertical_enabled: true
`

const earlyDetectionScript = `
frames:
  - channel: product/connection
    value: true
  - channel: product/model
    value: PHANTOM_4_PRO
  - channel: flight_assistant/detection_state
    value:
      position: NOSE
      disabled: true
  - channel: flight_assistant/detection_state
    value:
      position: TAIL
      disabled: false
`

type daemon struct {
	client *statusapi.Client
	cancel context.CancelFunc
	errCh  chan error
}

func startDaemon(t *testing.T, ctx context.Context, replay string) *daemon {
	t.Helper()
	ctx, cancel := context.WithCancel(ctx)

	script := filepath.Join(t.TempDir(), "replay.yaml")
	if err := os.WriteFile(script, []byte(replay), 0o600); err != nil {
		cancel()
		t.Fatalf("write replay: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		cancel()
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := config.Default()
	cfg.GRPCAddr = lis.Addr().String()
	cfg.MetricsAddr = ""
	cfg.Replay.File = script
	cfg.Replay.Mode = "accelerated"
	if err := cfg.Validate(); err != nil {
		cancel()
		t.Fatalf("Validate: %v", err)
	}

	log := logging.New(logging.Config{Level: "warn", Format: "text"})

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, log, lis)
	}()

	conn, err := grpc.NewClient(cfg.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cancel()
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &daemon{client: statusapi.NewClient(conn), cancel: cancel, errCh: errCh}
}

// stop cancels the daemon and checks that run exits cleanly.
func (d *daemon) stop(t *testing.T) {
	t.Helper()
	d.cancel()
	if err := <-d.errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}

// pollStatus calls GetStatus until done accepts the response or the deadline
// passes, and returns the last response fields.
func pollStatus(t *testing.T, ctx context.Context, client *statusapi.Client, done func(map[string]*structpb.Value) bool) map[string]*structpb.Value {
	t.Helper()
	var fields map[string]*structpb.Value
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); time.Sleep(20 * time.Millisecond) {
		resp, err := client.GetStatus(ctx, grpc.WaitForReady(true))
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		fields = resp.GetFields()
		if done(fields) {
			break
		}
	}
	return fields
}

func TestVisionStatusdReplaySmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d := startDaemon(t, ctx, replayScript)
	fields := pollStatus(t, ctx, d.client, func(f map[string]*structpb.Value) bool {
		return f["status"].GetStringValue() == "OMNI_ALL"
	})
	if got := fields["status"].GetStringValue(); got != "OMNI_ALL" {
		t.Fatalf("status = %q, want OMNI_ALL after replay", got)
	}
	d.stop(t)
}

func TestVisionStatusdKeepsEarlyDetections(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Detections arrive as soon as the replay starts; every one of them must
	// land in the sensor map.
	for i := 0; i < 5; i++ {
		d := startDaemon(t, ctx, earlyDetectionScript)
		fields := pollStatus(t, ctx, d.client, func(f map[string]*structpb.Value) bool {
			return len(f["sensors"].GetStructValue().GetFields()) == 2
		})
		sensors := fields["sensors"].GetStructValue().GetFields()
		if len(sensors) != 2 {
			t.Fatalf("run %d: sensors = %v, want NOSE and TAIL", i, sensors)
		}
		if got := sensors["NOSE"].GetStringValue(); got != "DISABLED" {
			t.Fatalf("run %d: NOSE = %q, want DISABLED", i, got)
		}
		if got := sensors["TAIL"].GetStringValue(); got != "NORMAL" {
			t.Fatalf("run %d: TAIL = %q, want NORMAL", i, got)
		}
		if got := fields["status"].GetStringValue(); got != "DISABLED" {
			t.Fatalf("run %d: status = %q, want DISABLED", i, got)
		}
		d.stop(t)
	}
}

func TestLoadCapabilitiesFallsBack(t *testing.T) {
	caps := loadCapabilities(logging.Noop(), filepath.Join(t.TempDir(), "missing.yaml"))
	if caps == nil {
		t.Fatalf("loadCapabilities returned nil")
	}
}
