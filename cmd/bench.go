package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rxtune/internal/config"
	"rxtune/internal/guard"
	"rxtune/internal/msr"
	"rxtune/internal/tuning"
	"rxtune/internal/workload"
)

var (
	benchAlgo    string
	benchThreads int
	benchSeconds int
	benchTuned   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the hashing workload and report throughput",
	Long: `Run a CPU-bound hashing loop on the hot cores and report the hash
rate. With --tuned the register preset is applied first and restored
afterwards, which makes before/after comparisons a two-command job:

  rxtune bench --hot-cores 0-3
  rxtune bench --hot-cores 0-3 --tuned`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.Context())
	},
}

func runBench(ctx context.Context) error {
	if benchAlgo != "" {
		cfg.BenchAlgo = benchAlgo
	}
	if benchThreads > 0 {
		cfg.BenchThreads = benchThreads
	}
	if benchSeconds > 0 {
		cfg.BenchSeconds = benchSeconds
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if benchTuned {
		engine := tuning.New(msr.New(log), log)
		engine.Apply(cfg.HotCores, cfg.CacheQoS)
		defer func() {
			if err := engine.Restore(); err != nil {
				log.Error("Restore after benchmark failed", "error", err)
			}
		}()
	}

	frame := guard.New(log)
	if cfg.ExceptionFrame {
		frame.Install()
		defer frame.Remove()
	}

	op := log.StartOperation("bench")
	op.Update("Hashing",
		"preset", cfg.BenchAlgo,
		"cores", config.FormatCoreList(cfg.HotCores))

	res, err := workload.Run(ctx, workload.Options{
		Threads:  cfg.BenchThreads,
		HotCores: cfg.HotCores,
		Algo:     cfg.BenchAlgo,
		Duration: time.Duration(cfg.BenchSeconds) * time.Second,
	}, frame, log)
	if err != nil {
		op.Fail("Benchmark aborted", "error", err)
		return err
	}

	op.Complete("Benchmark finished",
		"rate", fmt.Sprintf("%s h/s", humanize.SIWithDigits(res.Rate, 2, "")))
	fmt.Printf("Hashes:  %s in %s\n", humanize.Comma(int64(res.Hashes)), res.Elapsed.Round(time.Millisecond))
	fmt.Printf("Rate:    %s hashes/s\n", humanize.SIWithDigits(res.Rate, 2, ""))
	if res.Faults > 0 {
		fmt.Printf("Faults:  %d recovered\n", res.Faults)
	}
	return nil
}

func init() {
	benchCmd.Flags().StringVar(&benchAlgo, "algo", "", "hash algorithm: xxh3 or blake3 (default $RXTUNE_BENCH_ALGO)")
	benchCmd.Flags().IntVar(&benchThreads, "threads", 0, "worker threads (default one per hot core)")
	benchCmd.Flags().IntVar(&benchSeconds, "seconds", 0, "run duration in seconds (default $RXTUNE_BENCH_SECONDS)")
	benchCmd.Flags().BoolVar(&benchTuned, "tuned", false, "apply the register preset for the duration of the run")
	rootCmd.AddCommand(benchCmd)
}
