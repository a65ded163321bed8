package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-community-service/pkg/docs"
	"github.com/gilchrisn/graph-community-service/pkg/parser"
	"github.com/gilchrisn/graph-community-service/pkg/service"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	detectionService *service.DetectionService
	docsOpener       docs.Opener
	validate         *validator.Validate
	maxBodyBytes     int64
	startedAt        time.Time
}

// NewHandlers creates new API handlers
func NewHandlers(detectionService *service.DetectionService, docsOpener docs.Opener, maxBodyBytes int64) *Handlers {
	validate := validator.New()
	// Report JSON field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{
		detectionService: detectionService,
		docsOpener:       docsOpener,
		validate:         validate,
		maxBodyBytes:     maxBodyBytes,
		startedAt:        time.Now(),
	}
}

// CreateDetection runs community detection on the posted edge list
func (h *Handlers) CreateDetection(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req service.DetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			validationErrors := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				validationErrors[fe.Field()] = validationMessage(fe)
			}
			WriteValidationErrorResponse(w, "Invalid detection request", validationErrors)
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid detection request", err)
		return
	}

	detection, err := h.detectionService.Detect(r.Context(), req)
	if err != nil {
		h.writeDetectionError(w, err)
		return
	}

	WriteSuccessResponse(w, "Communities detected successfully", detection)
}

func (h *Handlers) writeDetectionError(w http.ResponseWriter, err error) {
	var malformed *parser.MalformedEdgeError
	switch {
	case errors.As(err, &malformed):
		WriteValidationErrorResponse(w, "Malformed edge", map[string]string{
			"edges": malformed.Reason,
			"token": malformed.Token,
			"line":  strconv.Itoa(malformed.Line),
		})
	case service.IsValidationError(err):
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid input", err)
	default:
		log.Error().Err(err).Msg("Detection failed")
		WriteErrorResponse(w, http.StatusInternalServerError, "Detection failed", err)
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "required_without":
		return "provide edges or edgeText"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// ListDetections lists all stored detections
func (h *Handlers) ListDetections(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Detections retrieved successfully", h.detectionService.List())
}

// GetDetection retrieves a specific detection
func (h *Handlers) GetDetection(w http.ResponseWriter, r *http.Request) {
	detectionID := mux.Vars(r)["detectionId"]

	detection, err := h.detectionService.Get(detectionID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Detection not found", err)
		return
	}

	WriteSuccessResponse(w, "Detection retrieved successfully", detection)
}

// DeleteDetection deletes a detection
func (h *Handlers) DeleteDetection(w http.ResponseWriter, r *http.Request) {
	detectionID := mux.Vars(r)["detectionId"]

	if err := h.detectionService.Delete(detectionID); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Detection not found", err)
		return
	}

	WriteSuccessResponse(w, "Detection deleted successfully", nil)
}

// GetGraphImage renders the original input graph
func (h *Handlers) GetGraphImage(w http.ResponseWriter, r *http.Request) {
	detectionID := mux.Vars(r)["detectionId"]

	img, err := h.detectionService.RenderGraph(detectionID, r.URL.Query().Get("format"))
	if err != nil {
		writeRenderError(w, err)
		return
	}
	writeImage(w, img)
}

// GetCommunityImage renders the induced subgraph of one community
func (h *Handlers) GetCommunityImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	detectionID := vars["detectionId"]

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid community index", err)
		return
	}

	img, err := h.detectionService.RenderCommunity(detectionID, index, r.URL.Query().Get("format"))
	if err != nil {
		writeRenderError(w, err)
		return
	}
	writeImage(w, img)
}

func writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "Detection not found", err)
	case errors.Is(err, service.ErrCommunityIndex):
		WriteErrorResponse(w, http.StatusNotFound, "Community not found", err)
	case errors.Is(err, service.ErrUnsupportedFormat):
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported image format", err)
	default:
		log.Error().Err(err).Msg("Rendering failed")
		WriteErrorResponse(w, http.StatusInternalServerError, "Rendering failed", err)
	}
}

func writeImage(w http.ResponseWriter, img *service.Image) {
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		log.Error().Err(err).Str("title", img.Title).Msg("Failed to write image")
	}
}

// ListDocuments lists the available documentation
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Documents retrieved successfully", docs.Documents())
}

// GetDocument redirects to a remote document or downloads a local one
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	link, err := h.docsOpener.Open(r.Context(), docs.Document(name))
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrUnknownDocument), errors.Is(err, docs.ErrDocumentMissing):
			WriteErrorResponse(w, http.StatusNotFound, "Document not found", err)
		default:
			log.Error().Err(err).Str("document", name).Msg("Failed to open document")
			WriteErrorResponse(w, http.StatusInternalServerError, "Failed to open document", err)
		}
		return
	}

	if link.Mode == docs.ModeRemoteLink {
		http.Redirect(w, r, link.Location, http.StatusFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", link.FileName))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, link.Location)
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Service is healthy", map[string]interface{}{
		"status":     "ok",
		"detections": len(h.detectionService.List()),
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
	})
}
