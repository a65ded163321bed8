package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.DetectionsTotal == nil {
		t.Error("DetectionsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}

	// Separate registries must not collide on metric names
	if NewRegistry() == nil {
		t.Error("second NewRegistry() returned nil")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/v1/detections", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/v1/detections", "200", 20*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/v1/detections", "400", 5*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/v1/detections", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}

	if got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/detections", "400")); got != 1 {
		t.Errorf("400 counter = %v, want 1", got)
	}
}

func TestRecordDetection(t *testing.T) {
	r := NewRegistry()

	r.RecordDetection(3*time.Millisecond, 4, 2, 0.5)
	r.RecordDetectionFailure(StatusInvalid, time.Millisecond)
	r.RecordDetectionFailure(StatusInvalid, time.Millisecond)

	tests := []struct {
		status string
		want   float64
	}{
		{StatusSuccess, 1},
		{StatusInvalid, 2},
		{StatusError, 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(r.DetectionsTotal.WithLabelValues(tt.status)); got != tt.want {
			t.Errorf("detections{status=%s} = %v, want %v", tt.status, got, tt.want)
		}
	}

	if got := testutil.CollectAndCount(r.DetectionDuration); got != 1 {
		t.Errorf("duration histogram series = %d, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	r := NewRegistry()

	r.SetStoredDetections(3)
	r.RecordImage("svg")
	r.RecordImage("svg")
	r.RecordImage("dot")

	if got := testutil.ToFloat64(r.StoredDetections); got != 3 {
		t.Errorf("stored detections = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.ImagesRenderedTotal.WithLabelValues("svg")); got != 2 {
		t.Errorf("svg images = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordDetection(time.Millisecond, 1, 1, 0)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(string(body), `communities_detections_total{status="success"} 1`) {
		t.Errorf("metrics output missing detection counter:\n%s", body)
	}
}
