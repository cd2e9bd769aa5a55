package warning

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/vision-status/internal/cell"
	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/mqtttest"
	"github.com/signalsfoundry/vision-status/internal/telemetry"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	got  []Warning
	err  error
	sent chan Warning
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{sent: make(chan Warning, 16)}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, w Warning) error {
	d.mu.Lock()
	d.got = append(d.got, w)
	d.mu.Unlock()
	d.sent <- w
	return d.err
}

type outcomeRecorder struct {
	mu     sync.Mutex
	counts map[[2]string]int
}

func (r *outcomeRecorder) ObserveWarning(action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[[2]string]int{}
	}
	r.counts[[2]string{action, outcome}]++
}

func TestNewWarningAction(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		enabled bool
		want    Action
	}{
		{true, ActionRemove},
		{false, ActionInsert},
	}
	for _, tt := range tests {
		w := New("x", tt.enabled, now)
		if w.Action != tt.want {
			t.Fatalf("New(enabled=%v).Action = %s, want %s", tt.enabled, w.Action, tt.want)
		}
		if w.Category != CategoryVision || w.Type != TypeAutoDisappear || !w.Timestamp.Equal(now) {
			t.Fatalf("New() = %+v, want VISION/AUTO_DISAPPEAR at %v", w, now)
		}
	}
}

func TestSenderDeliversAndReports(t *testing.T) {
	d := newRecordingDispatcher()
	rec := &outcomeRecorder{}
	s := NewSender(d, logging.Noop(), WithMetricsRecorder(rec))

	if err := <-s.Send(context.Background(), "obstacle avoidance off", false); err != nil {
		t.Fatalf("Send: %v", err)
	}
	w := <-d.sent
	if w.Action != ActionInsert || w.Reason != "obstacle avoidance off" {
		t.Fatalf("dispatched %+v, want INSERT", w)
	}
	if rec.counts[[2]string{"INSERT", "ok"}] != 1 {
		t.Fatalf("metrics = %v, want one INSERT/ok", rec.counts)
	}
}

func TestSenderReportsFailureWithoutRetry(t *testing.T) {
	d := newRecordingDispatcher()
	d.err = errors.New("warning system unavailable")
	rec := &outcomeRecorder{}
	s := NewSender(d, logging.Noop(), WithMetricsRecorder(rec))

	ch := s.Send(context.Background(), "r", true)
	if err := <-ch; !errors.Is(err, d.err) {
		t.Fatalf("Send error = %v, want %v", err, d.err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("result channel not closed after one value")
	}
	d.mu.Lock()
	attempts := len(d.got)
	d.mu.Unlock()
	if attempts != 1 {
		t.Fatalf("dispatch attempts = %d, want 1", attempts)
	}
	if rec.counts[[2]string{"REMOVE", "error"}] != 1 {
		t.Fatalf("metrics = %v, want one REMOVE/error", rec.counts)
	}
}

func TestSenderWithoutDispatcher(t *testing.T) {
	s := NewSender(nil, nil)
	if err := <-s.Send(context.Background(), "r", true); !errors.Is(err, ErrNoDispatcher) {
		t.Fatalf("Send error = %v, want ErrNoDispatcher", err)
	}
}

func TestMQTTDispatcherPublishes(t *testing.T) {
	fake := mqtttest.NewClient(mqtt.NewClientOptions())
	fake.Connect()
	d := NewMQTTDispatcher(fake, "aircraft/1/warnings", 1, telemetry.JSON)

	w := New("obstacle avoidance off", true, time.Unix(0, 0).UTC())
	if err := d.Dispatch(context.Background(), w); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	pub := fake.Published()
	if len(pub) != 1 || pub[0].Topic != "aircraft/1/warnings" || pub[0].QoS != 1 {
		t.Fatalf("published = %+v, want one message on aircraft/1/warnings", pub)
	}
	var got Warning
	if err := json.Unmarshal(pub[0].Payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Action != ActionRemove || got.Category != CategoryVision {
		t.Fatalf("payload = %+v, want VISION/REMOVE", got)
	}
}

func TestMQTTDispatcherNotConnected(t *testing.T) {
	fake := mqtttest.NewClient(mqtt.NewClientOptions())
	d := NewMQTTDispatcher(fake, "w", 0, nil)
	if err := d.Dispatch(context.Background(), New("r", true, time.Now())); err == nil {
		t.Fatalf("Dispatch error = nil while disconnected")
	}
}

func TestWatchSendsOnEveryChange(t *testing.T) {
	d := newRecordingDispatcher()
	s := NewSender(d, logging.Noop())
	enabled := cell.New(true)

	sub := enabled.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, sub, s, logging.Noop()) }()

	enabled.Set(true)
	enabled.Set(false)
	enabled.Set(true)

	for _, want := range []Action{ActionInsert, ActionRemove} {
		select {
		case w := <-d.sent:
			if w.Action != want || w.Reason != AvoidanceOffReason {
				t.Fatalf("dispatched %+v, want %s %q", w, want, AvoidanceOffReason)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
}
