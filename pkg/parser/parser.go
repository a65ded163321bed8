package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// ParseEdges builds a graph from edge tokens of the form "u v". nodeCount is
// the caller's declared node count; it must be positive but is otherwise only
// recorded on the graph. Blank tokens and '#' comments are skipped.
func ParseEdges(nodeCount int, tokens []string) (*graph.Graph, error) {
	if nodeCount < 1 {
		return nil, &InputValidationError{Reason: fmt.Sprintf("node count must be at least 1, got %d", nodeCount)}
	}

	// Validate everything before constructing the graph
	edges := make([][2]int, 0, len(tokens))
	for i, token := range tokens {
		line := strings.TrimSpace(token)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		u, v, err := parseEdge(i+1, line)
		if err != nil {
			return nil, &InputValidationError{Reason: "malformed edge", Err: err}
		}
		edges = append(edges, [2]int{u, v})
	}

	if len(edges) == 0 {
		return nil, &InputValidationError{Reason: "edge list is empty, enter at least one edge"}
	}

	g := graph.New()
	g.SetDeclaredNodes(nodeCount)
	for _, e := range edges {
		if _, err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("failed to add edge %d-%d: %w", e[0], e[1], err)
		}
	}

	return g, nil
}

// ParseText splits text into lines and parses each as an edge
func ParseText(nodeCount int, text string) (*graph.Graph, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return ParseEdges(nodeCount, strings.Split(strings.TrimSpace(text), "\n"))
}

// ParseReader reads an edge list stream, one edge per line
func ParseReader(nodeCount int, r io.Reader) (*graph.Graph, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}
	return ParseEdges(nodeCount, tokens)
}

func parseEdge(line int, token string) (int, int, error) {
	parts := strings.Fields(token)
	if len(parts) != 2 {
		return 0, 0, &MalformedEdgeError{
			Line:   line,
			Token:  token,
			Reason: fmt.Sprintf("expected 2 node ids, found %d", len(parts)),
		}
	}

	ids := [2]int{}
	for i, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, &MalformedEdgeError{Line: line, Token: token, Reason: fmt.Sprintf("%q is not an integer", part)}
		}
		if id < 0 {
			return 0, 0, &MalformedEdgeError{Line: line, Token: token, Reason: fmt.Sprintf("node id %d is negative", id)}
		}
		ids[i] = id
	}

	return ids[0], ids[1], nil
}
