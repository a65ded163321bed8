package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gilchrisn/graph-community-service/pkg/metrics"
)

// SetupRoutes registers the REST API under /api/v1
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Detection endpoints
	detections := api.PathPrefix("/detections").Subrouter()
	detections.HandleFunc("", handlers.CreateDetection).Methods("POST")
	detections.HandleFunc("", handlers.ListDetections).Methods("GET")
	detections.HandleFunc("/{detectionId}", handlers.GetDetection).Methods("GET")
	detections.HandleFunc("/{detectionId}", handlers.DeleteDetection).Methods("DELETE")

	// Image endpoints
	detections.HandleFunc("/{detectionId}/graph", handlers.GetGraphImage).Methods("GET")
	detections.HandleFunc("/{detectionId}/communities/{index:[0-9]+}/image", handlers.GetCommunityImage).Methods("GET")

	// Documentation endpoints
	api.HandleFunc("/docs", handlers.ListDocuments).Methods("GET")
	api.HandleFunc("/docs/{name}", handlers.GetDocument).Methods("GET")

	// Health check endpoint
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}

// NewRouter builds the full HTTP handler with middleware and /metrics
func NewRouter(handlers *Handlers, registry *metrics.Registry, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)
	router.Handle("/metrics", registry.Handler()).Methods("GET")

	router.Use(RecoveryMiddleware)

	// Logging and metrics sit outside the router to observe unmatched requests
	var handler http.Handler = router
	handler = MetricsMiddleware(registry, router)(handler)
	handler = LoggingMiddleware(handler)

	return CORSMiddleware(allowedOrigins)(handler)
}
