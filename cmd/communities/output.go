package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gilchrisn/graph-community-service/pkg/service"
)

var (
	colorTitle   = lipgloss.Color("#20B9B4")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#6C7A89")
)

// styles are bound to the output writer so escape codes only appear on
// terminals that support them
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		label:   r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

func printDetection(w io.Writer, d *service.Detection, history bool, images []string) {
	s := newStyles(w)

	fmt.Fprintln(w, s.title.Render("Original Graph"))
	fmt.Fprintf(w, "%d nodes, %d edges\n", d.Nodes, d.Edges)
	if !d.NodeCountMatches {
		fmt.Fprintln(w, s.warning.Render(fmt.Sprintf(
			"warning: %d nodes declared but the edge list references %d", d.DeclaredNodes, d.Nodes)))
	}
	if d.SelfLoops > 0 || d.DuplicateEdges > 0 {
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf(
			"ignored %d self-loops and %d duplicate edges", d.SelfLoops, d.DuplicateEdges)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.title.Render("Detected Communities"))
	for i, c := range d.Communities {
		fmt.Fprintf(w, "%s %s\n", s.label.Render(fmt.Sprintf("Community %d:", i+1)), formatNodes(c.Nodes))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %.4f %s\n", s.label.Render("Modularity:"), d.Modularity,
		s.muted.Render(fmt.Sprintf("(from %.4f after %d merges)", d.InitialModularity, d.BestStep)))

	if history && len(d.History) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.title.Render("Merge History"))
		for _, step := range d.History {
			marker := " "
			if step.Step == d.BestStep {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %3d  %d <- %d  dQ=%+.4f  Q=%.4f  communities=%d\n",
				marker, step.Step, step.Into, step.From, step.DeltaQ, step.Q, step.Communities)
		}
	}

	if len(images) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.title.Render("Images"))
		for _, path := range images {
			fmt.Fprintln(w, s.muted.Render(path))
		}
	}
}

func formatNodes(nodes []int) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
