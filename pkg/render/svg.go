package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SVGRenderer writes a self-contained SVG document
type SVGRenderer struct {
	strokeColor string
	fontSize    float64
}

// NewSVGRenderer creates an SVG renderer with gray edges
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{
		strokeColor: "#999999",
		fontSize:    10,
	}
}

// WithStrokeColor sets the color used for edges and node outlines
func (r *SVGRenderer) WithStrokeColor(color string) *SVGRenderer {
	r.strokeColor = color
	return r
}

func (r *SVGRenderer) ContentType() string { return "image/svg+xml" }

func (r *SVGRenderer) Extension() string { return "svg" }

// Render draws edges first so nodes sit on top of them
func (r *SVGRenderer) Render(w io.Writer, scene Scene) error {
	if scene.Graph == nil {
		return fmt.Errorf("scene %q has no graph", scene.Title)
	}

	bw := bufio.NewWriter(w)
	width, height := scene.Canvas.Width, scene.Canvas.Height

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(width), num(height), num(width), num(height))
	fmt.Fprintf(bw, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
	fmt.Fprintf(bw, `  <text x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="%s">%s</text>`+"\n",
		num(width/2), num(scene.Canvas.Padding/2), num(r.fontSize*1.6), escape(scene.Title))

	fmt.Fprintf(bw, `  <g stroke="%s" stroke-width="1">`+"\n", escape(r.strokeColor))
	for _, e := range scene.Graph.Edges() {
		from, ok1 := scene.Positions[e.U]
		to, ok2 := scene.Positions[e.V]
		if !ok1 || !ok2 {
			return fmt.Errorf("edge %d-%d has no position", e.U, e.V)
		}
		fmt.Fprintf(bw, `    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
			num(from.X), num(from.Y), num(to.X), num(to.Y))
	}
	fmt.Fprintf(bw, "  </g>\n")

	fmt.Fprintf(bw, `  <g stroke="%s" font-family="sans-serif" font-size="%s" text-anchor="middle">`+"\n",
		escape(r.strokeColor), num(r.fontSize))
	for _, n := range scene.Graph.Nodes() {
		p, ok := scene.Positions[n]
		if !ok {
			return fmt.Errorf("node %d has no position", n)
		}
		fmt.Fprintf(bw, `    <circle id="node-%d" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
			n, num(p.X), num(p.Y), num(scene.radius(n)), escape(scene.Fill))
		fmt.Fprintf(bw, `    <text x="%s" y="%s" stroke="none" dominant-baseline="central">%d</text>`+"\n",
			num(p.X), num(p.Y), n)
	}
	fmt.Fprintf(bw, "  </g>\n</svg>\n")

	return bw.Flush()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
