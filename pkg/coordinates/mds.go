package coordinates

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// MDSLayout computes 2D coordinates using classical multidimensional scaling
// over shortest-path distances
type MDSLayout struct {
	canvas      Canvas
	maxDistance float64 // distance used for unreachable pairs
	maxNodes    int     // above this many nodes fall back to a circle; 0 means no limit
}

// NewMDSLayout creates a new MDS layout
func NewMDSLayout(canvas Canvas) *MDSLayout {
	return &MDSLayout{
		canvas:      canvas,
		maxDistance: 0, // derived from the graph size when zero
	}
}

// WithMaxDistance sets the distance assigned to unreachable node pairs
func (ml *MDSLayout) WithMaxDistance(maxDist float64) *MDSLayout {
	ml.maxDistance = maxDist
	return ml
}

// WithMaxNodes caps the graph size MDS is attempted on. Larger graphs are
// laid out on a circle, since distances and scaling grow quadratically and
// cubically with the node count.
func (ml *MDSLayout) WithMaxNodes(maxNodes int) *MDSLayout {
	ml.maxNodes = maxNodes
	return ml
}

// Canvas returns the drawing area positions are fitted into
func (ml *MDSLayout) Canvas() Canvas { return ml.canvas }

// Compute places nodes with Torgerson scaling and fits them into the canvas
func (ml *MDSLayout) Compute(g *graph.Graph) (map[int]Position, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return map[int]Position{}, nil
	}
	if len(nodes) <= 2 || (ml.maxNodes > 0 && len(nodes) > ml.maxNodes) {
		// Too few points for a meaningful embedding, or too many to embed
		return NewCircularLayout(ml.canvas).Compute(g)
	}

	distances := ml.distanceMatrix(g, nodes)

	coords, err := torgerson(distances)
	if err != nil {
		return nil, fmt.Errorf("MDS computation failed: %w", err)
	}

	raw := make(map[int]Position, len(nodes))
	for i, n := range nodes {
		raw[n] = Position{X: coords.At(i, 0), Y: coords.At(i, 1)}
	}

	return fit(raw, ml.canvas), nil
}

// distanceMatrix computes BFS hop distances between all node pairs
func (ml *MDSLayout) distanceMatrix(g *graph.Graph, nodes []int) *mat.SymDense {
	n := len(nodes)
	maxDistance := ml.maxDistance
	if maxDistance <= 0 {
		maxDistance = float64(n)
	}

	index := make(map[int]int, n)
	for i, node := range nodes {
		index[node] = i
	}

	dist := mat.NewSymDense(n, nil)
	for i, source := range nodes {
		hops := bfs(g, source)
		for j := i + 1; j < n; j++ {
			d, reachable := hops[nodes[j]]
			if !reachable {
				dist.SetSym(i, j, maxDistance)
				continue
			}
			dist.SetSym(i, j, float64(d))
		}
	}

	return dist
}

func bfs(g *graph.Graph, source int) map[int]int {
	hops := map[int]int{source: 0}
	queue := []int{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.Neighbors(current) {
			if _, visited := hops[neighbor]; !visited {
				hops[neighbor] = hops[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}

	return hops
}

// torgerson returns an n x 2 coordinate matrix, padding missing dimensions
// with zeros
func torgerson(dist *mat.SymDense) (*mat.Dense, error) {
	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dist)
	if k == 0 {
		return nil, fmt.Errorf("no positive eigenvalues found")
	}

	rows, cols := coords.Dims()
	coords2D := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols && j < 2; j++ {
			coords2D.Set(i, j, coords.At(i, j))
		}
	}

	return coords2D, nil
}
