package service

import (
	"errors"
	"time"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
	"github.com/gilchrisn/graph-community-service/pkg/greedy"
)

var (
	ErrNotFound          = errors.New("detection not found")
	ErrCommunityIndex    = errors.New("community index out of range")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// DetectionRequest is the input of one detection. Edges and EdgeText are
// alternatives; EdgeText wins when both are set.
type DetectionRequest struct {
	NodeCount int      `json:"nodeCount" validate:"gte=1"`
	Edges     []string `json:"edges,omitempty" validate:"required_without=EdgeText"`
	EdgeText  string   `json:"edgeText,omitempty" validate:"required_without=Edges"`

	Parameters DetectionParameters `json:"parameters"`
}

// DetectionParameters override the configured algorithm defaults
type DetectionParameters struct {
	Resolution *float64 `json:"resolution,omitempty" validate:"omitempty,gt=0"`
	Cutoff     *int     `json:"cutoff,omitempty" validate:"omitempty,gte=1"`
	BestN      *int     `json:"bestN,omitempty" validate:"omitempty,gte=0"`
}

// Detection is a stored detection result
type Detection struct {
	ID                string             `json:"id" yaml:"id"`
	CreatedAt         time.Time          `json:"createdAt" yaml:"createdAt"`
	DeclaredNodes     int                `json:"declaredNodes" yaml:"declaredNodes"`
	Nodes             int                `json:"nodes" yaml:"nodes"`
	Edges             int                `json:"edges" yaml:"edges"`
	NodeCountMatches  bool               `json:"nodeCountMatches" yaml:"nodeCountMatches"`
	SelfLoops         int                `json:"selfLoops" yaml:"selfLoops"`
	DuplicateEdges    int                `json:"duplicateEdges" yaml:"duplicateEdges"`
	Modularity        float64            `json:"modularity" yaml:"modularity"`
	InitialModularity float64            `json:"initialModularity" yaml:"initialModularity"`
	BestStep          int                `json:"bestStep" yaml:"bestStep"`
	Communities       []Community        `json:"communities" yaml:"communities"`
	History           []greedy.MergeStep `json:"history" yaml:"history"`
	RuntimeMS         int64              `json:"runtimeMs" yaml:"runtimeMs"`

	graph     *graph.Graph
	subgraphs []*graph.Graph
}

// Community is one detected community with its induced edges
type Community struct {
	Index int          `json:"index" yaml:"index"`
	Nodes []int        `json:"nodes" yaml:"nodes"`
	Edges []graph.Edge `json:"edges" yaml:"edges"`
	Color string       `json:"color" yaml:"color"`
}

// Partition returns the communities as plain node lists
func (d *Detection) Partition() greedy.Partition {
	p := make(greedy.Partition, len(d.Communities))
	for i, c := range d.Communities {
		p[i] = c.Nodes
	}
	return p
}

// Graph returns the parsed input graph
func (d *Detection) Graph() *graph.Graph { return d.graph }

// Subgraph returns the induced subgraph of community index
func (d *Detection) Subgraph(index int) (*graph.Graph, error) {
	if index < 0 || index >= len(d.subgraphs) {
		return nil, ErrCommunityIndex
	}
	return d.subgraphs[index], nil
}

// DetectionSummary is the list view of a detection
type DetectionSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	Communities int       `json:"communities"`
	Modularity  float64   `json:"modularity"`
}

// Image is one rendered picture of a detection
type Image struct {
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Extension   string `json:"extension"`
	Data        []byte `json:"-"`
}
