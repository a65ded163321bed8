package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-community-service/pkg/metrics"
	"github.com/gilchrisn/graph-community-service/pkg/service"
)

type detectOptions struct {
	root *rootOptions

	nodes      int
	format     string
	renderDir  string
	image      string
	resolution float64
	cutoff     int
	bestN      int
	history    bool
}

func newDetectCmd(root *rootOptions) *cobra.Command {
	opts := &detectOptions{root: root}

	cmd := &cobra.Command{
		Use:   "detect [file|-]",
		Short: "Detect communities in an edge list read from a file or stdin",
		Long: `Reads one edge per line ("u v", non-negative integer node ids) and prints
the detected communities. Blank lines and lines starting with # are ignored.`,
		Example: `  communities detect graph.txt --nodes 6
  printf '0 1\n1 2\n2 0\n' | communities detect --nodes 3 --format json
  communities detect graph.txt --nodes 6 --render-dir out --image dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.nodes, "nodes", "n", 0, "declared number of nodes (at least 1)")
	flags.StringVarP(&opts.format, "format", "f", "text", "output format: text, json or yaml")
	flags.StringVar(&opts.renderDir, "render-dir", "", "write the original graph and one image per community into this directory")
	flags.StringVar(&opts.image, "image", "", "image format for --render-dir: svg or dot (default from config)")
	flags.Float64Var(&opts.resolution, "resolution", 1.0, "modularity resolution")
	flags.IntVar(&opts.cutoff, "cutoff", 1, "never merge below this many communities")
	flags.IntVar(&opts.bestN, "best-n", 0, "keep merging until at most this many communities remain (0 disables)")
	flags.BoolVar(&opts.history, "history", false, "include the merge history in text output")
	_ = cmd.MarkFlagRequired("nodes")

	return cmd
}

func (o *detectOptions) run(cmd *cobra.Command, args []string) error {
	switch o.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}

	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}

	edgeText, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	req := service.DetectionRequest{NodeCount: o.nodes, EdgeText: edgeText}
	flags := cmd.Flags()
	if flags.Changed("resolution") {
		req.Parameters.Resolution = &o.resolution
	}
	if flags.Changed("cutoff") {
		req.Parameters.Cutoff = &o.cutoff
	}
	if flags.Changed("best-n") {
		req.Parameters.BestN = &o.bestN
	}

	svc := service.NewDetectionService(cfg, metrics.NewRegistry())
	defer svc.Close()
	svc.SetLogOutput(cmd.ErrOrStderr())

	detection, err := svc.Detect(cmd.Context(), req)
	if err != nil {
		return err
	}

	var written []string
	if o.renderDir != "" {
		written, err = writeImages(svc, detection.ID, o.renderDir, o.image)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch o.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(detection)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(detection); err != nil {
			return err
		}
		return enc.Close()
	default:
		printDetection(out, detection, o.history, written)
		return nil
	}
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read edge list: %w", err)
	}
	return string(b), nil
}

// writeImages stores the image sequence as 00-original-graph.<ext>,
// 01-community-0.<ext>, ...
func writeImages(svc *service.DetectionService, id, dir, format string) ([]string, error) {
	images, err := svc.RenderAll(id, format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(images))
	for i, img := range images {
		slug := strings.ToLower(strings.ReplaceAll(img.Title, " ", "-"))
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.%s", i, slug, img.Extension))
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
