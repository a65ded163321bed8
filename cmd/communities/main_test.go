package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const twoTriangles = "0 1\n1 2\n2 0\n3 4\n4 5\n5 3\n2 3\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "disabled"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestDetectText(t *testing.T) {
	out, err := execute(t, twoTriangles, "detect", "--nodes", "6")
	require.NoError(t, err)

	assert.Contains(t, out, "Community 1: [0, 1, 2]")
	assert.Contains(t, out, "Community 2: [3, 4, 5]")
	assert.Contains(t, out, "Modularity: 0.3571")
	assert.NotContains(t, out, "warning")
}

func TestDetectNodeCountMismatch(t *testing.T) {
	out, err := execute(t, twoTriangles, "detect", "-", "--nodes", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: 9 nodes declared but the edge list references 6")
}

func TestDetectJSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte("# barbell\n0 1\n0 2\n1 2\n2 3\n3 4\n3 5\n4 5\n"), 0o644))

	out, err := execute(t, "", "detect", path, "--nodes", "6", "--format", "json")
	require.NoError(t, err)

	var d struct {
		Communities []struct {
			Nodes []int `json:"nodes"`
		} `json:"communities"`
		Modularity float64 `json:"modularity"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Len(t, d.Communities, 2)
	assert.Equal(t, []int{0, 1, 2}, d.Communities[0].Nodes)
	assert.Equal(t, []int{3, 4, 5}, d.Communities[1].Nodes)
}

func TestDetectYAML(t *testing.T) {
	out, err := execute(t, twoTriangles, "detect", "--nodes", "6", "--format", "yaml", "--best-n", "1")
	require.NoError(t, err)

	var d struct {
		Communities []struct {
			Nodes []int `yaml:"nodes"`
		} `yaml:"communities"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	require.Len(t, d.Communities, 1)
	assert.Len(t, d.Communities[0].Nodes, 6)
}

func TestDetectRenderDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	out, err := execute(t, twoTriangles, "detect", "--nodes", "6", "--render-dir", dir, "--image", "dot")
	require.NoError(t, err)

	for _, name := range []string{"00-original-graph.dot", "01-community-0.dot", "02-community-1.dot"} {
		path := filepath.Join(dir, name)
		assert.FileExists(t, path)
		assert.Contains(t, out, path)
	}

	data, err := os.ReadFile(filepath.Join(dir, "02-community-1.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fillcolor=lightgreen")
}

func TestDetectErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"missing nodes flag", twoTriangles, []string{"detect"}, "nodes"},
		{"empty input", "\n\n", []string{"detect", "--nodes", "3"}, "empty"},
		{"malformed edge", "0 1\n1 two\n", []string{"detect", "--nodes", "3"}, `"1 two" on line 2`},
		{"bad format", twoTriangles, []string{"detect", "--nodes", "6", "--format", "xml"}, "xml"},
		{"missing file", "", []string{"detect", "/does/not/exist", "--nodes", "2"}, "failed to read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Details.pdf"), []byte("%PDF"), 0o644))

	out, err := execute(t, "", "docs", "details", "--dir", dir, "--no-launch")
	require.NoError(t, err)
	assert.Contains(t, out, "Details.pdf resolved:")
	assert.Contains(t, out, filepath.Join(dir, "Details.pdf"))

	out, err = execute(t, "", "docs", "introduction", "--mode", "remote-link", "--base-url", "https://docs.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "https://docs.example.com/Introduction.pdf")

	_, err = execute(t, "", "docs", "introduction", "--dir", dir, "--no-launch")
	assert.Error(t, err, "missing file")

	_, err = execute(t, "", "docs", "faq", "--no-launch")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "communities dev\n", out)
}

func TestLogLevelFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644))

	opts := &rootOptions{configPath: path}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)

	t.Setenv("COMMUNITIES_LOGGING_LEVEL", "debug")
	cfg, err = opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)

	opts.logLevel, opts.logLevelSet = "disabled", true
	cfg, err = opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disabled", cfg.Logging.Level)
}
