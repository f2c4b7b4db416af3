// Package cmd wires the rxtune command tree. Commands receive their
// configuration and logger from main through Execute; subcommand files
// register themselves in their init functions.
package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rxtune/internal/config"
	"rxtune/internal/logger"
)

// Shared across all commands, set once in Execute
var (
	cfg *config.Config
	log logger.Logger
)

// Root-level flag storage; copied into cfg in the persistent pre-run so
// environment defaults survive when a flag is not passed
var (
	flagHotCores string
	flagNoMSR    bool
	flagNoQoS    bool
	flagNoColor  bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "rxtune",
	Short: "Host tuning control plane for CPU-bound hashing workloads",
	Long: `rxtune prepares a Linux host for a memory-hard hashing workload:
it classifies the CPU, applies the matching model-specific register
preset to every core, optionally partitions L3 cache between hashing
and housekeeping cores, and restores every register on exit.

All tuning is best-effort. A host without MSR access, or a CPU without
a known preset, keeps running untuned at reduced throughput.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("hot-cores") {
			cfg.HotCores = config.ParseCoreList(flagHotCores)
		}
		if flagNoMSR {
			cfg.Tune = false
		}
		if flagNoQoS {
			cfg.CacheQoS = false
		}
		if flagNoColor {
			cfg.NoColor = true
		}
		if flagDebug {
			cfg.Debug = true
		}
		if cfg.NoColor {
			color.NoColor = true
		}
		return cfg.Validate()
	},
}

// Execute runs the root command with the given configuration
func Execute(ctx context.Context, config *config.Config, logger logger.Logger) error {
	cfg = config
	log = logger

	rootCmd.Version = cfg.Version

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHotCores, "hot-cores", "", "cores running hashing threads, e.g. 0-3,8 (default $RXTUNE_HOT_CORES)")
	pf.BoolVar(&flagNoMSR, "no-msr", false, "skip register tuning entirely")
	pf.BoolVar(&flagNoQoS, "no-cache-qos", false, "skip L3 cache partitioning")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
}
