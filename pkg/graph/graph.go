package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Graph represents an unweighted undirected graph as an adjacency map.
// Nodes are created on first reference. Parallel edges are collapsed and
// self-loops only register their node, so Degree and NumEdges always
// describe the simple graph underneath. Read methods are safe for concurrent
// use once the graph is no longer modified.
type Graph struct {
	adjacency     map[int]map[int]struct{} // adjacency[u] = neighbor set of u
	degrees       map[int]int
	numEdges      int
	selfLoops     int
	duplicates    int
	declaredNodes int
}

// Edge is an undirected edge stored with U < V.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		adjacency: make(map[int]map[int]struct{}),
		degrees:   make(map[int]int),
	}
}

// AddNode registers a node without edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(n int) error {
	if n < 0 {
		return fmt.Errorf("node id must be non-negative: %d", n)
	}
	if _, exists := g.adjacency[n]; !exists {
		g.adjacency[n] = make(map[int]struct{})
	}
	return nil
}

// AddEdge adds the undirected edge u-v. It reports whether a new edge was
// stored; duplicates and self-loops return false without error.
func (g *Graph) AddEdge(u, v int) (bool, error) {
	if u < 0 || v < 0 {
		return false, fmt.Errorf("node ids must be non-negative: u=%d, v=%d", u, v)
	}

	g.AddNode(u)
	g.AddNode(v)

	if u == v {
		g.selfLoops++
		return false, nil
	}
	if _, exists := g.adjacency[u][v]; exists {
		g.duplicates++
		return false, nil
	}

	g.adjacency[u][v] = struct{}{}
	g.adjacency[v][u] = struct{}{}
	g.degrees[u]++
	g.degrees[v]++
	g.numEdges++

	return true, nil
}

// HasNode reports whether n is part of the graph
func (g *Graph) HasNode(n int) bool {
	_, exists := g.adjacency[n]
	return exists
}

// HasEdge reports whether u and v are adjacent
func (g *Graph) HasEdge(u, v int) bool {
	neighbors, exists := g.adjacency[u]
	if !exists {
		return false
	}
	_, adjacent := neighbors[v]
	return adjacent
}

// Nodes returns all node ids in ascending order
func (g *Graph) Nodes() []int {
	nodes := make([]int, 0, len(g.adjacency))
	for n := range g.adjacency {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return nodes
}

// Neighbors returns the neighbors of n in ascending order
func (g *Graph) Neighbors(n int) []int {
	neighbors := make([]int, 0, len(g.adjacency[n]))
	for m := range g.adjacency[n] {
		neighbors = append(neighbors, m)
	}
	sort.Ints(neighbors)
	return neighbors
}

// Degree returns the number of distinct neighbors of n
func (g *Graph) Degree(n int) int {
	return g.degrees[n]
}

// NumNodes returns the number of nodes
func (g *Graph) NumNodes() int {
	return len(g.adjacency)
}

// NumEdges returns m, the number of distinct non-loop edges
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// SelfLoops returns how many self-loop references were ignored
func (g *Graph) SelfLoops() int {
	return g.selfLoops
}

// Duplicates returns how many repeated edge references were collapsed
func (g *Graph) Duplicates() int {
	return g.duplicates
}

// DeclaredNodes returns the node count supplied by the caller, or 0 if none
func (g *Graph) DeclaredNodes() int {
	return g.declaredNodes
}

// SetDeclaredNodes records the caller's node count. It is informational only.
func (g *Graph) SetDeclaredNodes(n int) {
	g.declaredNodes = n
}

// Edges returns every edge once, with U < V, sorted by (U, V)
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.numEdges)
	for _, u := range g.Nodes() {
		for _, v := range g.Neighbors(u) {
			if u < v {
				edges = append(edges, Edge{U: u, V: v})
			}
		}
	}
	return edges
}

// InducedSubgraph returns the subgraph on nodes containing every edge of g
// with both endpoints in nodes. Unknown nodes are ignored.
func (g *Graph) InducedSubgraph(nodes []int) *Graph {
	sub := New()
	members := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		if g.HasNode(n) {
			members[n] = struct{}{}
			sub.AddNode(n)
		}
	}

	for u := range members {
		for v := range g.adjacency[u] {
			if _, inside := members[v]; inside && u < v {
				sub.AddEdge(u, v)
			}
		}
	}

	return sub
}

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := New()
	clone.numEdges = g.numEdges
	clone.selfLoops = g.selfLoops
	clone.duplicates = g.duplicates
	clone.declaredNodes = g.declaredNodes

	for n, neighbors := range g.adjacency {
		clone.adjacency[n] = make(map[int]struct{}, len(neighbors))
		for m := range neighbors {
			clone.adjacency[n][m] = struct{}{}
		}
	}
	for n, d := range g.degrees {
		clone.degrees[n] = d
	}

	return clone
}

// Validate checks adjacency symmetry and the incremental counters
func (g *Graph) Validate() error {
	degreeSum := 0
	for n, neighbors := range g.adjacency {
		if n < 0 {
			return fmt.Errorf("invalid node id %d", n)
		}
		if _, loop := neighbors[n]; loop {
			return fmt.Errorf("self-loop stored on node %d", n)
		}
		if len(neighbors) != g.degrees[n] {
			return fmt.Errorf("degree mismatch for node %d: stored %d, actual %d", n, g.degrees[n], len(neighbors))
		}
		for m := range neighbors {
			if _, back := g.adjacency[m][n]; !back {
				return fmt.Errorf("graph is not symmetric: edge %d-%d", n, m)
			}
		}
		degreeSum += len(neighbors)
	}

	if degreeSum != 2*g.numEdges {
		return fmt.Errorf("edge count mismatch: stored %d, degree sum %d", g.numEdges, degreeSum)
	}

	return nil
}

// ToGonum converts the graph into a gonum undirected graph with the same ids
func (g *Graph) ToGonum() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes() {
		ug.AddNode(simple.Node(int64(n)))
	}
	for _, e := range g.Edges() {
		ug.SetEdge(simple.Edge{F: simple.Node(int64(e.U)), T: simple.Node(int64(e.V))})
	}
	return ug
}
