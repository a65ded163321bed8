package greedy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// ErrEmptyGraph is returned when the graph has no nodes to partition
var ErrEmptyGraph = errors.New("graph has no nodes")

// Partition is an ordered list of disjoint communities. Each community is
// sorted ascending; communities are ordered by size descending, then by their
// smallest node id.
type Partition [][]int

// Result represents the algorithm output
type Result struct {
	Partition         Partition   `json:"partition"`
	Modularity        float64     `json:"modularity"`
	InitialModularity float64     `json:"initial_modularity"`
	History           []MergeStep `json:"history"`
	BestStep          int         `json:"best_step"` // merges applied to reach Partition
	Statistics        Statistics  `json:"statistics"`
}

// MergeStep records one agglomeration. Communities are named by their
// smallest node id, which never changes because the higher-ranked
// community is always merged into the lower-ranked one.
type MergeStep struct {
	Step        int     `json:"step" yaml:"step"`
	Into        int     `json:"into" yaml:"into"`
	From        int     `json:"from" yaml:"from"`
	DeltaQ      float64 `json:"delta_q" yaml:"delta_q"`
	Q           float64 `json:"q" yaml:"q"`
	Communities int     `json:"communities" yaml:"communities"`
}

// Statistics contains algorithm performance metrics
type Statistics struct {
	Nodes         int   `json:"nodes"`
	Edges         int   `json:"edges"`
	DeclaredNodes int   `json:"declared_nodes"`
	Merges        int   `json:"merges"`
	RuntimeMS     int64 `json:"runtime_ms"`
}

// Len returns the number of communities
func (p Partition) Len() int { return len(p) }

// Membership maps each node to the index of its community
func (p Partition) Membership() map[int]int {
	membership := make(map[int]int)
	for c, nodes := range p {
		for _, n := range nodes {
			membership[n] = c
		}
	}
	return membership
}

// Validate checks that communities are disjoint, non-empty and cover g
func (p Partition) Validate(g *graph.Graph) error {
	seen := make(map[int]int)
	for c, nodes := range p {
		if len(nodes) == 0 {
			return fmt.Errorf("community %d is empty", c)
		}
		for _, n := range nodes {
			if !g.HasNode(n) {
				return fmt.Errorf("community %d contains unknown node %d", c, n)
			}
			if prev, dup := seen[n]; dup {
				return fmt.Errorf("node %d appears in communities %d and %d", n, prev, c)
			}
			seen[n] = c
		}
	}
	if len(seen) != g.NumNodes() {
		return fmt.Errorf("partition covers %d of %d nodes", len(seen), g.NumNodes())
	}
	return nil
}

// Subgraphs returns the induced subgraph of g for every community, in order
func (p Partition) Subgraphs(g *graph.Graph) []*graph.Graph {
	subgraphs := make([]*graph.Graph, len(p))
	for c, nodes := range p {
		subgraphs[c] = g.InducedSubgraph(nodes)
	}
	return subgraphs
}

// Singletons returns the partition with every node alone
func Singletons(g *graph.Graph) Partition {
	p := make(Partition, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		p = append(p, []int{n})
	}
	return p
}

// Whole returns the partition with every node in one community
func Whole(g *graph.Graph) Partition {
	return Partition{g.Nodes()}
}

// normalize sorts members and orders communities by size, then smallest id
func normalize(p Partition) Partition {
	for _, nodes := range p {
		sort.Ints(nodes)
	}
	sort.SliceStable(p, func(i, j int) bool {
		if len(p[i]) != len(p[j]) {
			return len(p[i]) > len(p[j])
		}
		return p[i][0] < p[j][0]
	})
	return p
}
