package greedy

import (
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// Modularity computes Newman's modularity of p on g from scratch:
//
//	Q = Σ_c [ L_c/m − γ·(d_c/2m)² ]
//
// where L_c is the number of edges inside c and d_c its degree sum. A graph
// without edges has modularity 0.
func Modularity(g *graph.Graph, p Partition, resolution float64) float64 {
	m := float64(g.NumEdges())
	if m == 0 {
		return 0
	}

	membership := p.Membership()
	internal := make([]float64, len(p))
	degreeSum := make([]float64, len(p))

	for _, n := range g.Nodes() {
		c, ok := membership[n]
		if !ok {
			continue
		}
		degreeSum[c] += float64(g.Degree(n))
	}
	for _, e := range g.Edges() {
		cu, okU := membership[e.U]
		cv, okV := membership[e.V]
		if okU && okV && cu == cv {
			internal[cu]++
		}
	}

	q := 0.0
	m2 := 2 * m
	for c := range p {
		q += internal[c]/m - resolution*(degreeSum[c]/m2)*(degreeSum[c]/m2)
	}
	return q
}

// GonumQ computes the same quantity with gonum's community package, used to
// cross-check the incremental bookkeeping
func GonumQ(g *graph.Graph, p Partition, resolution float64) float64 {
	communities := make([][]gonumgraph.Node, len(p))
	for c, nodes := range p {
		communities[c] = make([]gonumgraph.Node, len(nodes))
		for i, n := range nodes {
			communities[c][i] = simple.Node(int64(n))
		}
	}
	return community.Q(g.ToGonum(), communities, resolution)
}
