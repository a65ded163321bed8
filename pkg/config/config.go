package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/gilchrisn/graph-community-service/pkg/docs"
	"github.com/gilchrisn/graph-community-service/pkg/greedy"
)

// EnvPrefix prefixes every environment override, e.g. COMMUNITIES_SERVER_ADDRESS
const EnvPrefix = "COMMUNITIES"

// Config is the application configuration shared by the server and CLI
type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Detections DetectionConfig `mapstructure:"detections"`
	Docs       DocsConfig      `mapstructure:"docs"`
	Render     RenderConfig    `mapstructure:"render"`
	Algorithm  AlgorithmConfig `mapstructure:"algorithm"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

type DetectionConfig struct {
	ResultTTL       time.Duration `mapstructure:"result_ttl" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

type DocsConfig struct {
	Mode    string `mapstructure:"mode" validate:"oneof=local-file remote-link"`
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	Launch  bool   `mapstructure:"launch"`
}

type RenderConfig struct {
	Format string `mapstructure:"format" validate:"oneof=svg dot"`
	Layout string `mapstructure:"layout" validate:"oneof=mds circular"`
	// MDSMaxNodes is the largest graph drawn with MDS; bigger ones use the circular layout
	MDSMaxNodes int     `mapstructure:"mds_max_nodes" validate:"gte=0"`
	Width       float64 `mapstructure:"width" validate:"gt=0"`
	Height      float64 `mapstructure:"height" validate:"gt=0"`
	Padding     float64 `mapstructure:"padding" validate:"gte=0"`
	MinRadius   float64 `mapstructure:"min_radius" validate:"gt=0"`
	MaxRadius   float64 `mapstructure:"max_radius" validate:"gtefield=MinRadius"`
}

type AlgorithmConfig struct {
	Resolution float64 `mapstructure:"resolution" validate:"gt=0"`
	Cutoff     int     `mapstructure:"cutoff" validate:"gte=1"`
	BestN      int     `mapstructure:"best_n" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", int64(10<<20))

	v.SetDefault("detections.result_ttl", time.Hour)
	v.SetDefault("detections.cleanup_interval", 5*time.Minute)

	v.SetDefault("docs.mode", string(docs.ModeLocalFile))
	v.SetDefault("docs.dir", ".")
	v.SetDefault("docs.base_url", "")
	v.SetDefault("docs.launch", true)

	v.SetDefault("render.format", "svg")
	v.SetDefault("render.layout", "mds")
	v.SetDefault("render.mds_max_nodes", 500)
	v.SetDefault("render.width", 640.0)
	v.SetDefault("render.height", 480.0)
	v.SetDefault("render.padding", 50.0)
	v.SetDefault("render.min_radius", 8.0)
	v.SetDefault("render.max_radius", 20.0)

	v.SetDefault("algorithm.resolution", 1.0)
	v.SetDefault("algorithm.cutoff", 1)
	v.SetDefault("algorithm.best_n", 0)

	v.SetDefault("logging.level", "info")
}

// Load reads defaults, then the optional YAML file at path, then
// COMMUNITIES_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file and no environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &cfg
}

var validate = validator.New()

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if docs.Mode(c.Docs.Mode) == docs.ModeRemoteLink && c.Docs.BaseURL == "" {
		return fmt.Errorf("invalid config: docs.base_url is required in remote-link mode")
	}
	if c.Algorithm.BestN > 0 && c.Algorithm.Cutoff > c.Algorithm.BestN {
		return fmt.Errorf("invalid config: algorithm.cutoff %d exceeds algorithm.best_n %d", c.Algorithm.Cutoff, c.Algorithm.BestN)
	}
	return nil
}

// GreedyConfig builds the algorithm configuration
func (c *Config) GreedyConfig() *greedy.Config {
	gc := greedy.NewConfig()
	gc.Set("algorithm.resolution", c.Algorithm.Resolution)
	gc.Set("algorithm.cutoff", c.Algorithm.Cutoff)
	gc.Set("algorithm.best_n", c.Algorithm.BestN)
	gc.Set("logging.level", c.Logging.Level)
	return gc
}

// DocsOpenerConfig converts the docs section for docs.New
func (c *Config) DocsOpenerConfig() docs.Config {
	return docs.Config{
		Mode:    docs.Mode(c.Docs.Mode),
		Dir:     c.Docs.Dir,
		BaseURL: c.Docs.BaseURL,
		Launch:  c.Docs.Launch,
	}
}
