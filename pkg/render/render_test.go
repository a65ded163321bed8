package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/gilchrisn/graph-community-service/pkg/coordinates"
	"github.com/gilchrisn/graph-community-service/pkg/graph"
)

func triangleWithTail(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}} {
		if _, err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestPalette(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "lightblue"},
		{1, "lightgreen"},
		{2, "lightcoral"},
		{3, "lightsalmon"},
		{4, "lightpink"},
		{5, "lightblue"},
		{12, "lightcoral"},
	}

	for _, tt := range tests {
		if got := DefaultPalette.Color(tt.index); got != tt.want {
			t.Errorf("Color(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func TestNewScene(t *testing.T) {
	g := triangleWithTail(t)
	canvas := coordinates.DefaultCanvas()

	scene, err := NewScene("Original Graph", g, coordinates.NewCircularLayout(canvas), nil, OriginalColor)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if len(scene.Positions) != 4 || len(scene.Radii) != 4 {
		t.Errorf("expected 4 positions and radii, got %d and %d", len(scene.Positions), len(scene.Radii))
	}
	if scene.Canvas != canvas {
		t.Errorf("scene canvas %+v, want %+v", scene.Canvas, canvas)
	}

	sized, err := NewScene("sized", g, coordinates.NewMDSLayout(canvas), coordinates.NewPageRankSizer(5, 20), OriginalColor)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if sized.Radii[2] <= sized.Radii[3] {
		t.Errorf("node 2 (degree 3) radius %.2f should exceed leaf radius %.2f", sized.Radii[2], sized.Radii[3])
	}

	if _, err := NewScene("nil", nil, coordinates.NewCircularLayout(canvas), nil, OriginalColor); err == nil {
		t.Error("expected error for nil graph")
	}
}

func TestSVGRenderer(t *testing.T) {
	g := triangleWithTail(t)
	scene, err := NewScene("Community <1> & friends", g, coordinates.NewCircularLayout(coordinates.DefaultCanvas()), nil, "lightgreen")
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	var buf bytes.Buffer
	if err := NewSVGRenderer().Render(&buf, scene); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	// Must be well-formed XML
	decoder := xml.NewDecoder(strings.NewReader(out))
	for {
		if _, err := decoder.Token(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("SVG is not well-formed: %v", err)
		}
	}

	for n := 0; n < 4; n++ {
		if !strings.Contains(out, fmt.Sprintf(`id="node-%d"`, n)) {
			t.Errorf("SVG missing node %d", n)
		}
	}
	if got := strings.Count(out, "<line "); got != 4 {
		t.Errorf("expected 4 edges, got %d", got)
	}
	if !strings.Contains(out, `fill="lightgreen"`) {
		t.Error("SVG missing community fill color")
	}
	if !strings.Contains(out, "Community &lt;1&gt; &amp; friends") {
		t.Error("title should be escaped")
	}
}

func TestSVGRendererMissingPosition(t *testing.T) {
	g := triangleWithTail(t)
	scene := Scene{Title: "broken", Graph: g, Canvas: coordinates.DefaultCanvas(), Positions: map[int]coordinates.Position{}}
	if err := NewSVGRenderer().Render(io.Discard, scene); err == nil {
		t.Error("expected error for missing positions")
	}
}

func TestDOTRenderer(t *testing.T) {
	g := triangleWithTail(t)
	scene, err := NewScene("Community 2", g, coordinates.NewCircularLayout(coordinates.DefaultCanvas()), nil, "lightcoral")
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	var buf bytes.Buffer
	if err := NewDOTRenderer().Render(&buf, scene); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"graph communities {", "fillcolor=lightcoral", "0 -- 1", "2 -- 3", `"Community 2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}

func TestForName(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		extension   string
		wantErr     bool
	}{
		{"svg", "image/svg+xml", "svg", false},
		{"", "image/svg+xml", "svg", false},
		{"dot", "text/vnd.graphviz", "dot", false},
		{"png", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForName(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForName(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if r.ContentType() != tt.contentType || r.Extension() != tt.extension {
				t.Errorf("got %s/%s, want %s/%s", r.ContentType(), r.Extension(), tt.contentType, tt.extension)
			}
		})
	}
}
