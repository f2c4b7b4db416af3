// rxtune — host tuning control plane for CPU-bound hashing workloads.
// Classifies the CPU, applies per-architecture register presets across
// all cores, partitions L3 cache for hashing threads, and restores the
// original state on exit.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rxtune/cmd"
	"rxtune/internal/config"
	"rxtune/internal/logger"
)

// Build information (set by ldflags)
var (
	version   = "1.2.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Create context that cancels on interrupt; tune relies on this for
	// its restore-on-exit path
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize configuration
	cfg := config.New()

	// Set version information
	cfg.Version = version
	cfg.BuildTime = buildTime
	cfg.GitCommit = gitCommit

	// Initialize logger — promote to debug level when Debug flag is set
	logLevel := cfg.LogLevel
	if cfg.Debug && logLevel != "debug" {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.LogFormat)

	// Execute command
	if err := cmd.Execute(ctx, cfg, log); err != nil {
		log.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
