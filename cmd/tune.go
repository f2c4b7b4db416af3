package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rxtune/internal/config"
	"rxtune/internal/guard"
	"rxtune/internal/logger"
	"rxtune/internal/msr"
	"rxtune/internal/tuning"
)

var (
	tuneDryRun  bool
	tuneNoFrame bool
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Apply the register preset and hold it until interrupted",
	Long: `Classify the CPU, back up and apply the matching register preset on
every core, then wait. On SIGINT/SIGTERM (or context cancellation) the
original register values are written back before exit.

With --hot-cores set and cache allocation available, hashing cores keep
the full L3 mask while all other cores are squeezed into a minimal
service class.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTune(cmd.Context())
	},
}

func runTune(ctx context.Context) error {
	feats := cfg.CPUDetector.Detect()
	log.Info("Detected CPU", "preset", feats.Brand)

	if tuneDryRun {
		return printTunePlan()
	}

	if !cfg.Tune {
		log.Info("Register tuning disabled, nothing to do")
		return nil
	}

	frame := guard.New(log)
	if cfg.ExceptionFrame && !tuneNoFrame {
		frame.Install()
		defer frame.Remove()
	}

	engine := tuning.New(msr.New(log), log)
	engine.Apply(cfg.HotCores, cfg.CacheQoS)

	// Hold the tuned state until the surrounding context is cancelled,
	// then put every register back no matter how Apply went
	if engine.IsEnabled() {
		log.Info("Host is tuned, press Ctrl-C to restore and exit",
			"mod", engine.Mod().String(),
			"cores", config.FormatCoreList(cfg.HotCores))
	} else {
		log.Info("Running untuned, press Ctrl-C to exit")
	}
	<-ctx.Done()

	return engine.Restore()
}

// printTunePlan shows what a real run would write, without touching MSRs
func printTunePlan() error {
	mod := tuning.DetectMod(logger.NewNullLogger())
	preset := tuning.Preset(mod)

	logger.Header("=== Tuning Plan ===")
	fmt.Printf("Preset:      %s\n", mod)
	fmt.Printf("Hot cores:   %s\n", config.FormatCoreList(cfg.HotCores))
	fmt.Printf("Cache QoS:   %t\n", cfg.CacheQoS && len(cfg.HotCores) > 0)
	fmt.Printf("Fault frame: %t\n", cfg.ExceptionFrame && !tuneNoFrame)
	fmt.Println()

	if len(preset) == 0 {
		logger.Warning("No register writes for this CPU; the host would run untuned")
		return nil
	}
	fmt.Println("Register writes (per core):")
	for _, item := range preset {
		if item.Mask != msr.NoMask {
			fmt.Printf("  %s  mask=0x%016x\n", item, item.Mask)
		} else {
			fmt.Printf("  %s\n", item)
		}
	}
	return nil
}

func init() {
	tuneCmd.Flags().BoolVar(&tuneDryRun, "dry-run", false, "print the planned register writes without applying them")
	tuneCmd.Flags().BoolVar(&tuneNoFrame, "no-exception-frame", false, "do not install hot-loop fault recovery")
	rootCmd.AddCommand(tuneCmd)
}
