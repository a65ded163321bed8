package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-community-service/pkg/config"
	"github.com/gilchrisn/graph-community-service/pkg/coordinates"
	"github.com/gilchrisn/graph-community-service/pkg/graph"
	"github.com/gilchrisn/graph-community-service/pkg/greedy"
	"github.com/gilchrisn/graph-community-service/pkg/metrics"
	"github.com/gilchrisn/graph-community-service/pkg/parser"
	"github.com/gilchrisn/graph-community-service/pkg/render"
)

// DetectionService runs detections and keeps their results for a while
type DetectionService struct {
	detections map[string]*Detection
	mutex      sync.RWMutex

	cfg       *config.Config
	metrics   *metrics.Registry
	logOutput io.Writer
	now       func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewDetectionService creates the service and starts its cleanup loop
func NewDetectionService(cfg *config.Config, registry *metrics.Registry) *DetectionService {
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	s := &DetectionService{
		detections: make(map[string]*Detection),
		cfg:        cfg,
		metrics:    registry,
		logOutput:  os.Stderr,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// SetLogOutput redirects the algorithm's progress logger
func (s *DetectionService) SetLogOutput(w io.Writer) {
	s.logOutput = w
}

// Detect parses the request, partitions the graph and stores the result
func (s *DetectionService) Detect(ctx context.Context, req DetectionRequest) (*Detection, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := parseRequest(req)
	if err != nil {
		s.metrics.RecordDetectionFailure(metrics.StatusInvalid, time.Since(start))
		return nil, err
	}

	gc, err := s.algorithmConfig(req.Parameters)
	if err != nil {
		s.metrics.RecordDetectionFailure(metrics.StatusInvalid, time.Since(start))
		return nil, fmt.Errorf("%w: %v", parser.ErrInvalidInput, err)
	}

	result, err := greedy.Run(g, gc)
	if err != nil {
		s.metrics.RecordDetectionFailure(metrics.StatusError, time.Since(start))
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	detection := newDetection(uuid.New().String(), s.now(), g, result)

	s.mutex.Lock()
	s.detections[detection.ID] = detection
	stored := len(s.detections)
	s.mutex.Unlock()

	s.metrics.RecordDetection(time.Since(start), len(result.History), len(detection.Communities), result.Modularity)
	s.metrics.SetStoredDetections(stored)

	log.Info().
		Str("detection_id", detection.ID).
		Int("nodes", detection.Nodes).
		Int("edges", detection.Edges).
		Int("communities", len(detection.Communities)).
		Float64("modularity", detection.Modularity).
		Msg("Detection completed")

	return detection, nil
}

func parseRequest(req DetectionRequest) (*graph.Graph, error) {
	if req.EdgeText != "" {
		return parser.ParseText(req.NodeCount, req.EdgeText)
	}
	return parser.ParseEdges(req.NodeCount, req.Edges)
}

func (s *DetectionService) algorithmConfig(params DetectionParameters) (*greedy.Config, error) {
	gc := s.cfg.GreedyConfig()
	gc.SetOutput(s.logOutput)

	if params.Resolution != nil {
		gc.Set("algorithm.resolution", *params.Resolution)
	}
	if params.Cutoff != nil {
		gc.Set("algorithm.cutoff", *params.Cutoff)
	}
	if params.BestN != nil {
		gc.Set("algorithm.best_n", *params.BestN)
	}

	if err := gc.Validate(); err != nil {
		return nil, err
	}
	return gc, nil
}

func newDetection(id string, createdAt time.Time, g *graph.Graph, result *greedy.Result) *Detection {
	subgraphs := result.Partition.Subgraphs(g)

	communities := make([]Community, len(result.Partition))
	for i, nodes := range result.Partition {
		communities[i] = Community{
			Index: i,
			Nodes: nodes,
			Edges: subgraphs[i].Edges(),
			Color: render.DefaultPalette.Color(i),
		}
	}

	return &Detection{
		ID:                id,
		CreatedAt:         createdAt,
		DeclaredNodes:     g.DeclaredNodes(),
		Nodes:             g.NumNodes(),
		Edges:             g.NumEdges(),
		NodeCountMatches:  g.DeclaredNodes() == g.NumNodes(),
		SelfLoops:         g.SelfLoops(),
		DuplicateEdges:    g.Duplicates(),
		Modularity:        result.Modularity,
		InitialModularity: result.InitialModularity,
		BestStep:          result.BestStep,
		Communities:       communities,
		History:           result.History,
		RuntimeMS:         result.Statistics.RuntimeMS,
		graph:             g,
		subgraphs:         subgraphs,
	}
}

// Get retrieves a detection by ID
func (s *DetectionService) Get(id string) (*Detection, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	detection, exists := s.detections[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return detection, nil
}

// List returns summaries of all stored detections, newest first
func (s *DetectionService) List() []DetectionSummary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := make([]DetectionSummary, 0, len(s.detections))
	for _, d := range s.detections {
		summaries = append(summaries, DetectionSummary{
			ID:          d.ID,
			CreatedAt:   d.CreatedAt,
			Nodes:       d.Nodes,
			Edges:       d.Edges,
			Communities: len(d.Communities),
			Modularity:  d.Modularity,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Delete removes a detection
func (s *DetectionService) Delete(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.detections[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.detections, id)
	s.metrics.SetStoredDetections(len(s.detections))

	log.Info().Str("detection_id", id).Msg("Detection deleted")
	return nil
}

// RenderGraph draws the original input graph
func (s *DetectionService) RenderGraph(id, format string) (*Image, error) {
	detection, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.renderImage("Original Graph", detection.graph, render.OriginalColor, format)
}

// RenderCommunity draws the induced subgraph of one community
func (s *DetectionService) RenderCommunity(id string, index int, format string) (*Image, error) {
	detection, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sub, err := detection.Subgraph(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %d of %d", err, index, len(detection.Communities))
	}
	return s.renderImage(fmt.Sprintf("Community %d", index), sub, detection.Communities[index].Color, format)
}

// RenderAll draws the original graph followed by every community in order
func (s *DetectionService) RenderAll(id, format string) ([]*Image, error) {
	detection, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	images := make([]*Image, 0, len(detection.Communities)+1)
	original, err := s.RenderGraph(id, format)
	if err != nil {
		return nil, err
	}
	images = append(images, original)

	for i := range detection.Communities {
		img, err := s.RenderCommunity(id, i, format)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *DetectionService) renderImage(title string, g *graph.Graph, fill, format string) (*Image, error) {
	if format == "" {
		format = s.cfg.Render.Format
	}
	renderer, err := render.ForName(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	canvas := coordinates.Canvas{
		Width:   s.cfg.Render.Width,
		Height:  s.cfg.Render.Height,
		Padding: s.cfg.Render.Padding,
	}
	layout, err := coordinates.ForName(s.cfg.Render.Layout, canvas)
	if err != nil {
		return nil, err
	}
	if mdsLayout, ok := layout.(*coordinates.MDSLayout); ok {
		mdsLayout.WithMaxNodes(s.cfg.Render.MDSMaxNodes)
	}
	sizer := coordinates.NewPageRankSizer(s.cfg.Render.MinRadius, s.cfg.Render.MaxRadius)

	scene, err := render.NewScene(title, g, layout, sizer, fill)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, scene); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", title, err)
	}
	s.metrics.RecordImage(renderer.Extension())

	return &Image{
		Title:       title,
		ContentType: renderer.ContentType(),
		Extension:   renderer.Extension(),
		Data:        buf.Bytes(),
	}, nil
}

// Close stops the cleanup loop
func (s *DetectionService) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// cleanupLoop periodically evicts expired detections
func (s *DetectionService) cleanupLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.Detections.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes detections older than the result TTL
func (s *DetectionService) cleanup() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-s.cfg.Detections.ResultTTL)
	cleaned := 0

	for id, d := range s.detections {
		if d.CreatedAt.Before(cutoff) {
			delete(s.detections, id)
			cleaned++
		}
	}

	if cleaned > 0 {
		s.metrics.SetStoredDetections(len(s.detections))
		log.Info().
			Int("cleaned_detections", cleaned).
			Msg("Detection cleanup completed")
	}
	return cleaned
}

// IsValidationError reports whether err was caused by bad caller input
func IsValidationError(err error) bool {
	return errors.Is(err, parser.ErrInvalidInput) || errors.Is(err, ErrUnsupportedFormat)
}
