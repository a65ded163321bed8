package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-service/pkg/config"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

type rootOptions struct {
	configPath  string
	logLevel    string
	logLevelSet bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "communities",
		Short: "Detect communities in undirected graphs with greedy modularity",
		Long: `communities partitions an undirected graph, given as an edge list,
into communities by greedy modularity agglomeration, and can draw the
original graph and every community as SVG or Graphviz images.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logLevelSet = cmd.Flags().Changed("log-level")
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil || !opts.logLevelSet {
				level = zerolog.WarnLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "15:04:05",
			}).Level(level).With().Timestamp().Logger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error or disabled (default from config)")

	rootCmd.AddCommand(
		newDetectCmd(opts),
		newDocsCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	// the flag only wins when given, so logging.level from the file or
	// COMMUNITIES_LOGGING_LEVEL still applies
	if o.logLevelSet {
		cfg.Logging.Level = o.logLevel
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		log.Logger = log.Logger.Level(level)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "communities %s\n", version)
		},
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
