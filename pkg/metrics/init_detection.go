package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDetectionMetrics() {
	r.DetectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_detections_total",
			Help: "Total number of community detection runs by outcome",
		},
		[]string{"status"},
	)

	r.DetectionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "communities_detection_duration_seconds",
			Help:    "Time spent parsing and partitioning a graph",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
	)

	r.DetectionMerges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "communities_detection_merges",
			Help:    "Number of agglomeration steps per detection",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.DetectionCommunities = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "communities_detection_communities",
			Help:    "Number of communities returned per detection",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	r.DetectionModularity = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "communities_detection_modularity",
			Help:    "Modularity of the returned partition",
			Buckets: prometheus.LinearBuckets(-0.5, 0.1, 16),
		},
	)

	r.StoredDetections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "communities_stored_detections",
			Help: "Detections currently held in memory",
		},
	)

	r.ImagesRenderedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_images_rendered_total",
			Help: "Total number of rendered graph images by format",
		},
		[]string{"format"},
	)
}
