package render

import (
	"fmt"
	"io"

	"github.com/gilchrisn/graph-community-service/pkg/coordinates"
	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// OriginalColor fills the nodes of the input graph
const OriginalColor = "lightblue"

// Palette cycles fill colors across communities
type Palette []string

// DefaultPalette is the community color cycle
var DefaultPalette = Palette{"lightblue", "lightgreen", "lightcoral", "lightsalmon", "lightpink"}

// Color returns the fill for community index i
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return OriginalColor
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// Renderer draws a scene into w
type Renderer interface {
	Render(w io.Writer, scene Scene) error
	ContentType() string
	Extension() string
}

// Sizer assigns a radius to every node
type Sizer interface {
	Radii(g *graph.Graph) map[int]float64
}

// Scene is everything a renderer needs to draw one graph
type Scene struct {
	Title     string
	Graph     *graph.Graph
	Canvas    coordinates.Canvas
	Positions map[int]coordinates.Position
	Radii     map[int]float64
	Fill      string
}

const defaultRadius = 12

// NewScene lays out g and sizes its nodes. A nil sizer gives every node the
// default radius.
func NewScene(title string, g *graph.Graph, layout coordinates.Layout, sizer Sizer, fill string) (Scene, error) {
	if g == nil {
		return Scene{}, fmt.Errorf("scene %q has no graph", title)
	}

	positions, err := layout.Compute(g)
	if err != nil {
		return Scene{}, fmt.Errorf("layout failed for %q: %w", title, err)
	}

	var radii map[int]float64
	if sizer != nil {
		radii = sizer.Radii(g)
	} else {
		radii = make(map[int]float64, g.NumNodes())
		for _, n := range g.Nodes() {
			radii[n] = defaultRadius
		}
	}

	canvas := coordinates.DefaultCanvas()
	if c, ok := layout.(interface{ Canvas() coordinates.Canvas }); ok {
		canvas = c.Canvas()
	}

	return Scene{
		Title:     title,
		Graph:     g,
		Canvas:    canvas,
		Positions: positions,
		Radii:     radii,
		Fill:      fill,
	}, nil
}

func (s Scene) radius(n int) float64 {
	if r, ok := s.Radii[n]; ok && r > 0 {
		return r
	}
	return defaultRadius
}

// ForName returns the renderer for an image format
func ForName(format string) (Renderer, error) {
	switch format {
	case "svg", "":
		return NewSVGRenderer(), nil
	case "dot":
		return NewDOTRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown image format: %s", format)
	}
}
