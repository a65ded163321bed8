package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-community-service/pkg/docs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "communities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Hour, cfg.Detections.ResultTTL)
	assert.Equal(t, 5*time.Minute, cfg.Detections.CleanupInterval)
	assert.Equal(t, "local-file", cfg.Docs.Mode)
	assert.Equal(t, "svg", cfg.Render.Format)
	assert.Equal(t, "mds", cfg.Render.Layout)
	assert.Equal(t, 500, cfg.Render.MDSMaxNodes)
	assert.Equal(t, 1.0, cfg.Algorithm.Resolution)
	assert.Equal(t, 1, cfg.Algorithm.Cutoff)
	assert.Equal(t, 0, cfg.Algorithm.BestN)

	assert.Equal(t, cfg, Default())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
  read_timeout: 5s
detections:
  result_ttl: 10m
docs:
  mode: remote-link
  base_url: https://docs.example.com/pdf
render:
  format: dot
  layout: circular
algorithm:
  resolution: 0.5
  best_n: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, 10*time.Minute, cfg.Detections.ResultTTL)
	assert.Equal(t, "dot", cfg.Render.Format)
	assert.Equal(t, 0.5, cfg.Algorithm.Resolution)
	assert.Equal(t, 3, cfg.Algorithm.BestN)

	dc := cfg.DocsOpenerConfig()
	assert.Equal(t, docs.ModeRemoteLink, dc.Mode)
	assert.Equal(t, "https://docs.example.com/pdf", dc.BaseURL)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("COMMUNITIES_SERVER_ADDRESS", ":7070")
	t.Setenv("COMMUNITIES_ALGORITHM_RESOLUTION", "2")
	t.Setenv("COMMUNITIES_DETECTIONS_RESULT_TTL", "90s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 2.0, cfg.Algorithm.Resolution)
	assert.Equal(t, 90*time.Second, cfg.Detections.ResultTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"zero ttl", func(c *Config) { c.Detections.ResultTTL = 0 }},
		{"unknown docs mode", func(c *Config) { c.Docs.Mode = "email" }},
		{"remote without url", func(c *Config) { c.Docs.Mode = "remote-link" }},
		{"bad url", func(c *Config) { c.Docs.BaseURL = "not a url" }},
		{"unknown format", func(c *Config) { c.Render.Format = "png" }},
		{"unknown layout", func(c *Config) { c.Render.Layout = "spring" }},
		{"radius order", func(c *Config) { c.Render.MaxRadius = 1 }},
		{"zero resolution", func(c *Config) { c.Algorithm.Resolution = 0 }},
		{"zero cutoff", func(c *Config) { c.Algorithm.Cutoff = 0 }},
		{"cutoff above best_n", func(c *Config) { c.Algorithm.Cutoff = 4; c.Algorithm.BestN = 2 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGreedyConfig(t *testing.T) {
	cfg := Default()
	cfg.Algorithm.Resolution = 1.5
	cfg.Algorithm.Cutoff = 2
	cfg.Algorithm.BestN = 4
	cfg.Logging.Level = "warn"

	gc := cfg.GreedyConfig()
	assert.Equal(t, 1.5, gc.Resolution())
	assert.Equal(t, 2, gc.Cutoff())
	assert.Equal(t, 4, gc.BestN())
	assert.Equal(t, "warn", gc.LogLevel())
	assert.NoError(t, gc.Validate())
}
