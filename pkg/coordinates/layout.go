package coordinates

import (
	"fmt"
	"math"

	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Canvas describes the drawing area positions are fitted into
type Canvas struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// DefaultCanvas returns a 640x480 canvas with 50px padding
func DefaultCanvas() Canvas {
	return Canvas{Width: 640, Height: 480, Padding: 50}
}

// Layout computes a position for every node of a graph
type Layout interface {
	Compute(g *graph.Graph) (map[int]Position, error)
}

// ForName returns the layout registered under name
func ForName(name string, canvas Canvas) (Layout, error) {
	switch name {
	case "circular":
		return NewCircularLayout(canvas), nil
	case "mds", "":
		return NewMDSLayout(canvas), nil
	default:
		return nil, fmt.Errorf("unknown layout: %s", name)
	}
}

// CircularLayout arranges nodes in a circle in ascending id order
type CircularLayout struct {
	canvas Canvas
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(canvas Canvas) *CircularLayout {
	return &CircularLayout{canvas: canvas}
}

// Canvas returns the drawing area positions are fitted into
func (cl *CircularLayout) Canvas() Canvas { return cl.canvas }

// Compute arranges nodes in a circle
func (cl *CircularLayout) Compute(g *graph.Graph) (map[int]Position, error) {
	nodes := g.Nodes()
	positions := make(map[int]Position, len(nodes))

	centerX := cl.canvas.Width / 2
	centerY := cl.canvas.Height / 2

	if len(nodes) == 1 {
		positions[nodes[0]] = Position{X: centerX, Y: centerY}
		return positions, nil
	}

	radius := math.Min(centerX, centerY) - cl.canvas.Padding
	if radius <= 0 {
		return nil, fmt.Errorf("canvas %gx%g too small for padding %g", cl.canvas.Width, cl.canvas.Height, cl.canvas.Padding)
	}

	angleStep := 2 * math.Pi / float64(len(nodes))
	for i, n := range nodes {
		angle := float64(i)*angleStep - math.Pi/2
		positions[n] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}

// fit scales raw coordinates into the padded canvas, keeping aspect ratio
func fit(raw map[int]Position, canvas Canvas) map[int]Position {
	if len(raw) == 0 {
		return raw
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range raw {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	innerW := canvas.Width - 2*canvas.Padding
	innerH := canvas.Height - 2*canvas.Padding
	spanX, spanY := maxX-minX, maxY-minY

	scale := 0.0
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(innerW/spanX, innerH/spanY)
	case spanX > 0:
		scale = innerW / spanX
	case spanY > 0:
		scale = innerH / spanY
	}

	centerX, centerY := canvas.Width/2, canvas.Height/2
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	fitted := make(map[int]Position, len(raw))
	for n, p := range raw {
		fitted[n] = Position{
			X: centerX + (p.X-midX)*scale,
			Y: centerY + (p.Y-midY)*scale,
		}
	}
	return fitted
}
