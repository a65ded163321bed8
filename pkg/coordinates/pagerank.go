package coordinates

import (
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// PageRankSizer derives node radii from PageRank scores
type PageRankSizer struct {
	dampingFactor float64
	tolerance     float64
	minRadius     float64
	maxRadius     float64
}

// NewPageRankSizer creates a sizer with standard damping
func NewPageRankSizer(minRadius, maxRadius float64) *PageRankSizer {
	return &PageRankSizer{
		dampingFactor: 0.85,
		tolerance:     1e-6,
		minRadius:     minRadius,
		maxRadius:     maxRadius,
	}
}

// WithDampingFactor sets the damping factor (default: 0.85)
func (ps *PageRankSizer) WithDampingFactor(factor float64) *PageRankSizer {
	ps.dampingFactor = factor
	return ps
}

// Scores computes PageRank for every node of g
func (ps *PageRankSizer) Scores(g *graph.Graph) map[int]float64 {
	scores := make(map[int]float64, g.NumNodes())
	if g.NumNodes() == 0 {
		return scores
	}

	// Undirected edges become two directed ones
	directed := simple.NewDirectedGraph()
	for _, n := range g.Nodes() {
		directed.AddNode(simple.Node(int64(n)))
	}
	for _, e := range g.Edges() {
		u, v := simple.Node(int64(e.U)), simple.Node(int64(e.V))
		directed.SetEdge(simple.Edge{F: u, T: v})
		directed.SetEdge(simple.Edge{F: v, T: u})
	}

	for id, score := range network.PageRank(directed, ps.dampingFactor, ps.tolerance) {
		scores[int(id)] = score
	}
	return scores
}

// Radii maps PageRank scores linearly onto [minRadius, maxRadius]
func (ps *PageRankSizer) Radii(g *graph.Graph) map[int]float64 {
	scores := ps.Scores(g)
	radii := make(map[int]float64, len(scores))

	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		minScore, maxScore = math.Min(minScore, s), math.Max(maxScore, s)
	}

	// Spreads within float noise count as equal scores
	spread := maxScore - minScore
	for n, s := range scores {
		normalized := 1.0
		if spread > 1e-9*maxScore {
			normalized = (s - minScore) / (maxScore - minScore)
		}
		radii[n] = ps.minRadius + normalized*(ps.maxRadius-ps.minRadius)
	}
	return radii
}
