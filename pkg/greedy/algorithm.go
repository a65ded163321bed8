package greedy

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// mergeState holds the incremental CNM bookkeeping. Community c starts as the
// node of rank c in ascending id order. Edge counts and degree sums stay
// integral so that equal gains compare equal and the index tie-break applies.
type mergeState struct {
	gamma float64
	nodes []int
	twoM  int64
	deg   []int64         // deg[c] = degree sum of c
	edges []map[int]int64 // edges[c][d] = edges between c and d; only for adjacent communities
	alive int
	q     float64
}

func newMergeState(g *graph.Graph, gamma float64) *mergeState {
	nodes := g.Nodes()
	n := len(nodes)
	s := &mergeState{
		gamma: gamma,
		nodes: nodes,
		twoM:  2 * int64(g.NumEdges()),
		deg:   make([]int64, n),
		edges: make([]map[int]int64, n),
		alive: n,
	}

	rank := make(map[int]int, n)
	for i, node := range nodes {
		rank[node] = i
		s.edges[i] = make(map[int]int64)
	}

	if s.twoM == 0 {
		return s
	}

	for i, node := range nodes {
		s.deg[i] = int64(g.Degree(node))
		a := float64(s.deg[i]) / float64(s.twoM)
		s.q -= gamma * a * a
	}

	for _, e := range g.Edges() {
		i, j := rank[e.U], rank[e.V]
		s.edges[i][j]++
		s.edges[j][i]++
	}

	return s
}

// gain is ΔQ_ij scaled by (2m)²/2, i.e. E_ij·2m − γ·D_i·D_j. It is exact for
// integer resolutions.
func (s *mergeState) gain(i, j int, eij int64) float64 {
	return float64(eij*s.twoM) - s.gamma*float64(s.deg[i]*s.deg[j])
}

// deltaQ converts a scaled gain back to ΔQ
func (s *mergeState) deltaQ(gain float64) float64 {
	m2 := float64(s.twoM)
	return 2 * gain / (m2 * m2)
}

// bestPair returns the adjacent pair with the largest ΔQ. Ties go to the
// lexicographically smallest (i, j) with i < j.
func (s *mergeState) bestPair() (int, int, float64, bool) {
	bestI, bestJ := -1, -1
	best := math.Inf(-1)

	for i, row := range s.edges {
		for j, eij := range row {
			if j <= i {
				continue
			}
			g := s.gain(i, j, eij)
			if g > best || (g == best && (i < bestI || (i == bestI && j < bestJ))) {
				bestI, bestJ, best = i, j, g
			}
		}
	}

	if bestI < 0 {
		return -1, -1, 0, false
	}
	return bestI, bestJ, s.deltaQ(best), true
}

// merge folds community j into community i (i < j) and sums the edge counts
// of every neighbor
func (s *mergeState) merge(i, j int) {
	rowI, rowJ := s.edges[i], s.edges[j]
	merged := make(map[int]int64, len(rowI)+len(rowJ))

	for k, eik := range rowI {
		if k != j {
			merged[k] += eik
		}
	}
	for k, ejk := range rowJ {
		if k != i {
			merged[k] += ejk
		}
	}

	for k := range rowJ {
		if k != i {
			delete(s.edges[k], j)
		}
	}
	for k, count := range merged {
		s.edges[k][i] = count
	}
	s.edges[i] = merged
	s.edges[j] = nil

	s.deg[i] += s.deg[j]
	s.deg[j] = 0
	s.alive--
}

// Detect partitions g into communities with the default configuration
func Detect(g *graph.Graph) (Partition, error) {
	config := NewConfig()
	config.Set("logging.level", "disabled")

	result, err := Run(g, config)
	if err != nil {
		return nil, err
	}
	return result.Partition, nil
}

// Run executes greedy modularity agglomeration and returns the partition with
// the highest modularity seen across all merges
func Run(g *graph.Graph, config *Config) (*Result, error) {
	startTime := time.Now()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if g == nil || g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	logger := config.CreateLogger()
	cutoff, bestN := config.Cutoff(), config.BestN()
	eligible := func(count int) bool { return bestN == 0 || count <= bestN }

	logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Float64("resolution", config.Resolution()).
		Msg("Starting greedy modularity detection")

	if declared := g.DeclaredNodes(); declared > 0 && declared != g.NumNodes() {
		logger.Warn().
			Int("declared", declared).
			Int("actual", g.NumNodes()).
			Msg("Declared node count differs from nodes referenced by edges")
	}

	state := newMergeState(g, config.Resolution())
	result := &Result{
		InitialModularity: state.q,
		History:           make([]MergeStep, 0),
	}

	bestQ, bestStep, found := math.Inf(-1), 0, false
	if eligible(state.alive) {
		bestQ, found = state.q, true
	}

	for state.alive > 1 && state.alive > cutoff {
		i, j, delta, ok := state.bestPair()
		if !ok {
			logger.Debug().Int("communities", state.alive).Msg("No adjacent communities left")
			break
		}
		if delta <= 0 && eligible(state.alive) {
			logger.Debug().Float64("delta_q", delta).Msg("Converged: no merge increases modularity")
			break
		}

		state.merge(i, j)
		state.q += delta

		step := MergeStep{
			Step:        len(result.History) + 1,
			Into:        state.nodes[i],
			From:        state.nodes[j],
			DeltaQ:      delta,
			Q:           state.q,
			Communities: state.alive,
		}
		result.History = append(result.History, step)

		if eligible(state.alive) && (!found || state.q > bestQ) {
			bestQ, bestStep, found = state.q, step.Step, true
		}

		logMerge(logger, config, step)
	}

	if !found {
		// best_n could not be reached, e.g. too many components
		bestQ, bestStep = state.q, len(result.History)
	}

	result.Partition = replay(state.nodes, result.History[:bestStep])
	result.Modularity = bestQ
	result.BestStep = bestStep
	result.Statistics = Statistics{
		Nodes:         g.NumNodes(),
		Edges:         g.NumEdges(),
		DeclaredNodes: g.DeclaredNodes(),
		Merges:        len(result.History),
		RuntimeMS:     time.Since(startTime).Milliseconds(),
	}

	logger.Info().
		Int("communities", result.Partition.Len()).
		Int("merges", len(result.History)).
		Int("best_step", bestStep).
		Float64("modularity", result.Modularity).
		Msg("Greedy modularity detection completed")

	return result, nil
}

func logMerge(logger zerolog.Logger, config *Config, step MergeStep) {
	interval := config.ProgressInterval()
	if config.EnableProgress() && interval > 0 && step.Step%interval == 0 {
		logger.Info().
			Int("step", step.Step).
			Int("communities", step.Communities).
			Float64("modularity", step.Q).
			Msg("Agglomeration progress")
	}

	logger.Debug().
		Int("step", step.Step).
		Int("into", step.Into).
		Int("from", step.From).
		Float64("delta_q", step.DeltaQ).
		Msg("Merged communities")
}

// replay rebuilds the partition after the given merges, starting from
// singletons
func replay(nodes []int, history []MergeStep) Partition {
	members := make(map[int][]int, len(nodes))
	for _, n := range nodes {
		members[n] = []int{n}
	}
	for _, step := range history {
		members[step.Into] = append(members[step.Into], members[step.From]...)
		delete(members, step.From)
	}

	p := make(Partition, 0, len(members))
	for _, n := range nodes {
		if community, ok := members[n]; ok {
			p = append(p, community)
		}
	}
	return normalize(p)
}
