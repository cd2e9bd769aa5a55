package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/vision-status/internal/telemetry"
	"github.com/signalsfoundry/vision-status/model"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRPCCollector(reg)
	if err != nil {
		t.Fatalf("NewRPCCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/vision.status.v1.VisionStatusService/GetStatus"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		time.Sleep(5 * time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("VisionStatusService", "GetStatus", "OK")); got != 1 {
		t.Fatalf("vision_rpc_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "vision_rpc_duration_seconds", map[string]string{
		"service": "VisionStatusService",
		"method":  "GetStatus",
	}); count != 1 {
		t.Fatalf("vision_rpc_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRPCCollector(reg)
	if err != nil {
		t.Fatalf("NewRPCCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/vision.status.v1.VisionStatusService/SendWarning"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "boom")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("VisionStatusService", "SendWarning", "InvalidArgument")); got != 1 {
		t.Fatalf("vision_rpc_requests_total error label = %v, want 1", got)
	}
}

func TestStreamInterceptorTracksOpenStreams(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRPCCollector(reg)
	if err != nil {
		t.Fatalf("NewRPCCollector: %v", err)
	}

	interceptor := collector.StreamServerInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: "/vision.status.v1.VisionStatusService/WatchStatus", IsServerStream: true}
	open := collector.OpenStreams.WithLabelValues("VisionStatusService", "WatchStatus")

	err = interceptor(nil, nil, info, func(srv interface{}, ss grpc.ServerStream) error {
		if got := testutil.ToFloat64(open); got != 1 {
			t.Errorf("open streams during handler = %v, want 1", got)
		}
		return status.Error(codes.Canceled, "client went away")
	})
	if status.Code(err) != codes.Canceled {
		t.Fatalf("interceptor error = %v, want Canceled", err)
	}
	if got := testutil.ToFloat64(open); got != 0 {
		t.Fatalf("open streams after handler = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("VisionStatusService", "WatchStatus", "Canceled")); got != 1 {
		t.Fatalf("vision_rpc_requests_total = %v, want 1", got)
	}
}

func TestStatusCollectorRecordsEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewStatusCollector(reg)
	if err != nil {
		t.Fatalf("NewStatusCollector: %v", err)
	}

	if got := testutil.ToFloat64(c.Status.WithLabelValues("NORMAL")); got != 1 {
		t.Fatalf("vision_status{NORMAL} initially = %v, want 1", got)
	}

	c.ObserveRecompute(model.VisionOmniAll)
	c.ObserveRecompute(model.VisionOmniAll)
	c.ObserveTransition(model.VisionNormal, model.VisionOmniAll)

	if got := testutil.ToFloat64(c.Recomputations); got != 2 {
		t.Fatalf("vision_recomputations_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Status.WithLabelValues("OMNI_ALL")); got != 1 {
		t.Fatalf("vision_status{OMNI_ALL} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Status.WithLabelValues("NORMAL")); got != 0 {
		t.Fatalf("vision_status{NORMAL} = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.Transitions.WithLabelValues("NORMAL", "OMNI_ALL")); got != 1 {
		t.Fatalf("vision_status_transitions_total = %v, want 1", got)
	}
}

func TestStatusCollectorTelemetryAndWarnings(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewStatusCollector(reg)
	if err != nil {
		t.Fatalf("NewStatusCollector: %v", err)
	}

	c.ObserveTelemetryUpdate(telemetry.ChannelFlightMode)
	c.ObserveDecodeError(telemetry.ChannelFlightMode)
	c.ObserveWarning("INSERT", "ok")

	if got := testutil.ToFloat64(c.Updates.WithLabelValues(string(telemetry.ChannelFlightMode))); got != 1 {
		t.Fatalf("telemetry_updates_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.DecodeErrors.WithLabelValues(string(telemetry.ChannelFlightMode))); got != 1 {
		t.Fatalf("telemetry_decode_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Warnings.WithLabelValues("INSERT", "ok")); got != 1 {
		t.Fatalf("vision_warnings_total = %v, want 1", got)
	}
}

func TestCollectorsReuseExistingRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewStatusCollector(reg)
	if err != nil {
		t.Fatalf("NewStatusCollector: %v", err)
	}
	second, err := NewStatusCollector(reg)
	if err != nil {
		t.Fatalf("second NewStatusCollector: %v", err)
	}
	second.ObserveWarning("REMOVE", "error")
	if got := testutil.ToFloat64(first.Warnings.WithLabelValues("REMOVE", "error")); got != 1 {
		t.Fatalf("shared vision_warnings_total = %v, want 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *StatusCollector
	c.ObserveRecompute(model.VisionClosed)
	c.ObserveTransition(model.VisionClosed, model.VisionNormal)
	c.ObserveWarning("INSERT", "ok")
	c.ObserveTelemetryUpdate(telemetry.ChannelConnected)
	c.ObserveDecodeError(telemetry.ChannelConnected)
}

func TestMetricsHandlerExposesStatusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rpc, err := NewRPCCollector(reg)
	if err != nil {
		t.Fatalf("NewRPCCollector: %v", err)
	}
	st, err := NewStatusCollector(reg)
	if err != nil {
		t.Fatalf("NewStatusCollector: %v", err)
	}
	rpc.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	rpc.RPCDurations.WithLabelValues("svc", "method").Observe(0.01)
	st.ObserveRecompute(model.VisionDisabled)
	st.ObserveTransition(model.VisionNormal, model.VisionDisabled)
	st.ObserveTelemetryUpdate(telemetry.ChannelConnected)
	st.ObserveDecodeError(telemetry.ChannelConnected)
	st.ObserveWarning("INSERT", "ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	st.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"vision_rpc_requests_total",
		"vision_rpc_duration_seconds",
		"vision_status",
		"vision_recomputations_total",
		"vision_status_transitions_total",
		"telemetry_updates_total",
		"telemetry_decode_errors_total",
		"vision_warnings_total",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, `vision_status{status="DISABLED"} 1`) {
		t.Fatalf("/metrics output missing active status: %s", body)
	}
}

func TestSplitMethod(t *testing.T) {
	tests := []struct {
		in            string
		service, meth string
	}{
		{"/vision.status.v1.VisionStatusService/GetStatus", "VisionStatusService", "GetStatus"},
		{"", "unknown", "unknown"},
		{"GetStatus", "unknown", "unknown"},
		{"/Svc/", "Svc", "unknown"},
	}
	for _, tt := range tests {
		s, m := SplitMethod(tt.in)
		if s != tt.service || m != tt.meth {
			t.Fatalf("SplitMethod(%q) = %q, %q; want %q, %q", tt.in, s, m, tt.service, tt.meth)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
