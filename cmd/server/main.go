package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-community-service/pkg/api"
	"github.com/gilchrisn/graph-community-service/pkg/config"
	"github.com/gilchrisn/graph-community-service/pkg/docs"
	"github.com/gilchrisn/graph-community-service/pkg/metrics"
	"github.com/gilchrisn/graph-community-service/pkg/service"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting community detection service")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("address", cfg.Server.Address).
		Dur("result_ttl", cfg.Detections.ResultTTL).
		Str("docs_mode", cfg.Docs.Mode).
		Msg("Configuration loaded")

	// The server never opens a desktop viewer
	docsCfg := cfg.DocsOpenerConfig()
	docsCfg.Launch = false
	opener, err := docs.New(docsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure documentation")
	}

	registry := metrics.DefaultRegistry()
	detectionService := service.NewDetectionService(cfg, registry)
	defer detectionService.Close()

	handlers := api.NewHandlers(detectionService, opener, cfg.Server.MaxBodyBytes)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(handlers, registry, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("address", cfg.Server.Address).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server shutdown complete")
}
