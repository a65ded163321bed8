package greedy

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// graphFromEndpoints pairs up consecutive ids into edges
func graphFromEndpoints(endpoints []int) *graph.Graph {
	g := graph.New()
	for i := 0; i+1 < len(endpoints); i += 2 {
		g.AddEdge(endpoints[i], endpoints[i+1])
	}
	return g
}

// TestPartitionInvariants uses property-based testing to verify that every
// detection result is a valid, reproducible, modularity-consistent partition
func TestPartitionInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	endpoints := gen.SliceOfN(40, gen.IntRange(0, 15))

	properties.Property("communities are disjoint and cover every node", prop.ForAll(
		func(ids []int) bool {
			g := graphFromEndpoints(ids)
			p, err := Detect(g)
			return err == nil && p.Validate(g) == nil
		},
		endpoints,
	))

	properties.Property("detection is deterministic", prop.ForAll(
		func(ids []int) bool {
			g := graphFromEndpoints(ids)
			first, err1 := Detect(g)
			second, err2 := Detect(g.Clone())
			return err1 == nil && err2 == nil && reflect.DeepEqual(first, second)
		},
		endpoints,
	))

	properties.Property("reported modularity matches a full recomputation", prop.ForAll(
		func(ids []int) bool {
			g := graphFromEndpoints(ids)
			result, err := Run(g, quietConfig())
			if err != nil {
				return false
			}
			return math.Abs(Modularity(g, result.Partition, 1.0)-result.Modularity) < tolerance
		},
		endpoints,
	))

	properties.Property("result never scores below the singleton partition", prop.ForAll(
		func(ids []int) bool {
			g := graphFromEndpoints(ids)
			result, err := Run(g, quietConfig())
			if err != nil {
				return false
			}
			return result.Modularity >= Modularity(g, Singletons(g), 1.0)-tolerance
		},
		endpoints,
	))

	properties.Property("communities never span disconnected components", prop.ForAll(
		func(ids []int) bool {
			g := graphFromEndpoints(ids)
			p, err := Detect(g)
			if err != nil {
				return false
			}
			for _, community := range p {
				if !connected(g.InducedSubgraph(community)) {
					return false
				}
			}
			return true
		},
		endpoints,
	))

	properties.TestingRun(t)
}

func connected(g *graph.Graph) bool {
	nodes := g.Nodes()
	if len(nodes) <= 1 {
		return true
	}
	seen := map[int]bool{nodes[0]: true}
	queue := []int{nodes[0]}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range g.Neighbors(n) {
			if !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}
	return len(seen) == len(nodes)
}
