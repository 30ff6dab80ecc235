// Package main implements the worldclock HTTP API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/worldclock/pkg/config"
	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

var (
	configPath = flag.String("config", "", "Config file (or set "+config.EnvPath+")")
	listen     = flag.String("listen", "", "Listen address (or set LISTEN, default from config)")
	rateLimit  = flag.Int("rate-limit", defaultRateLimit, "API requests per minute per client IP")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("worldclock-server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}

	path, err := config.Path(*configPath)
	if err != nil {
		logger.Error("Failed to locate config", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("Failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	if *listen == "" {
		*listen = os.Getenv("LISTEN")
	}
	if *listen == "" {
		*listen = cfg.Listen
	}

	resolver := zone.NewResolver(logger)
	engine, err := worldclock.New(append(cfg.EngineOptions(), worldclock.WithResolver(resolver), worldclock.WithLogger(logger))...)
	if err != nil {
		logger.Error("Failed to create engine", "error", err)
		os.Exit(1)
	}
	set, err := locations.NewSet(resolver, cfg.Locations)
	if err != nil {
		logger.Error("Invalid locations in config", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("Server configuration",
		"listen", *listen,
		"config", path,
		"reference_zone", cfg.ReferenceZone,
		"business_hours", cfg.BusinessHours.String(),
		"locations", set.Len(),
		"rate_limit", *rateLimit,
		"verbose", *verbose)

	s := newServer(engine, set, cfg.ReferenceZone, logger, *rateLimit)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "listen", *listen)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
