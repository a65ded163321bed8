package greedy

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages algorithm configuration using Viper
type Config struct {
	v   *viper.Viper
	out io.Writer
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.resolution", 1.0)
	v.SetDefault("algorithm.cutoff", 1)
	v.SetDefault("algorithm.best_n", 0)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", false)
	v.SetDefault("logging.progress_interval", 100)

	return &Config{v: v, out: os.Stdout}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) Resolution() float64 { return c.v.GetFloat64("algorithm.resolution") }
func (c *Config) Cutoff() int         { return c.v.GetInt("algorithm.cutoff") }
func (c *Config) BestN() int          { return c.v.GetInt("algorithm.best_n") }

func (c *Config) LogLevel() string      { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool  { return c.v.GetBool("logging.enable_progress") }
func (c *Config) ProgressInterval() int { return c.v.GetInt("logging.progress_interval") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// SetOutput redirects the logger created by CreateLogger
func (c *Config) SetOutput(w io.Writer) {
	c.out = w
}

// Validate checks the algorithm parameters
func (c *Config) Validate() error {
	if c.Resolution() <= 0 {
		return fmt.Errorf("resolution must be positive, got %g", c.Resolution())
	}
	if c.Cutoff() < 1 {
		return fmt.Errorf("cutoff must be at least 1, got %d", c.Cutoff())
	}
	if c.BestN() < 0 {
		return fmt.Errorf("best_n must not be negative, got %d", c.BestN())
	}
	if c.BestN() > 0 && c.Cutoff() > c.BestN() {
		return fmt.Errorf("cutoff %d must not exceed best_n %d", c.Cutoff(), c.BestN())
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        c.out,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "greedy").Logger()
}
