package render

import (
	"fmt"
	"io"
	"strconv"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// DOTRenderer writes Graphviz source. Positions are passed as pinned pos
// attributes so neato reproduces the computed layout.
type DOTRenderer struct {
	name string
}

// NewDOTRenderer creates a DOT renderer
func NewDOTRenderer() *DOTRenderer {
	return &DOTRenderer{name: "communities"}
}

func (r *DOTRenderer) ContentType() string { return "text/vnd.graphviz" }

func (r *DOTRenderer) Extension() string { return "dot" }

func (r *DOTRenderer) Render(w io.Writer, scene Scene) error {
	if scene.Graph == nil {
		return fmt.Errorf("scene %q has no graph", scene.Title)
	}

	dg := &dotGraph{
		UndirectedGraph: simple.NewUndirectedGraph(),
		title:           scene.Title,
	}

	for _, n := range scene.Graph.Nodes() {
		p, ok := scene.Positions[n]
		if !ok {
			return fmt.Errorf("node %d has no position", n)
		}
		// Graphviz points are 1/72 inch and its y axis points up
		inches := 2 * scene.radius(n) / 72
		dg.AddNode(dotNode{
			id: int64(n),
			attrs: []encoding.Attribute{
				{Key: "fillcolor", Value: scene.Fill},
				{Key: "width", Value: strconv.FormatFloat(inches, 'f', 3, 64)},
				{Key: "pos", Value: strconv.Quote(fmt.Sprintf("%.2f,%.2f!", p.X, scene.Canvas.Height-p.Y))},
			},
		})
	}
	for _, e := range scene.Graph.Edges() {
		dg.SetEdge(simple.Edge{F: dg.Node(int64(e.U)), T: dg.Node(int64(e.V))})
	}

	b, err := dot.Marshal(dg, r.name, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DOT: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write DOT: %w", err)
	}
	return nil
}

type dotNode struct {
	id    int64
	attrs []encoding.Attribute
}

func (n dotNode) ID() int64 { return n.id }

func (n dotNode) Attributes() []encoding.Attribute { return n.attrs }

// dotGraph adds graph-wide Graphviz attributes to a simple undirected graph
type dotGraph struct {
	*simple.UndirectedGraph
	title string
}

var _ gonumgraph.Undirected = (*dotGraph)(nil)

func (g *dotGraph) DOTAttributers() (graphAttrs, nodeAttrs, edgeAttrs encoding.Attributer) {
	graphAttrs = attributes{
		{Key: "label", Value: strconv.Quote(g.title)},
		{Key: "labelloc", Value: "t"},
	}
	nodeAttrs = attributes{
		{Key: "shape", Value: "circle"},
		{Key: "style", Value: "filled"},
		{Key: "fixedsize", Value: "true"},
	}
	edgeAttrs = attributes{
		{Key: "color", Value: "gray"},
	}
	return graphAttrs, nodeAttrs, edgeAttrs
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }
