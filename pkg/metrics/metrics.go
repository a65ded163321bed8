package metrics

import (
	"time"
)

// Detection outcomes
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDetection records a successful detection
func (r *Registry) RecordDetection(duration time.Duration, merges, communities int, modularity float64) {
	r.DetectionsTotal.WithLabelValues(StatusSuccess).Inc()
	r.DetectionDuration.Observe(duration.Seconds())
	r.DetectionMerges.Observe(float64(merges))
	r.DetectionCommunities.Observe(float64(communities))
	r.DetectionModularity.Observe(modularity)
}

// RecordDetectionFailure records a detection rejected as invalid input or
// failed for another reason
func (r *Registry) RecordDetectionFailure(status string, duration time.Duration) {
	r.DetectionsTotal.WithLabelValues(status).Inc()
	r.DetectionDuration.Observe(duration.Seconds())
}

// RecordImage counts one rendered image
func (r *Registry) RecordImage(format string) {
	r.ImagesRenderedTotal.WithLabelValues(format).Inc()
}

// SetStoredDetections updates the stored detection gauge
func (r *Registry) SetStoredDetections(n int) {
	r.StoredDetections.Set(float64(n))
}
