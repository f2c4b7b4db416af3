package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rxtune/internal/cpu"
	"rxtune/internal/logger"
	"rxtune/internal/msr"
	"rxtune/internal/tuning"
)

var cpuCmd = &cobra.Command{
	Use:   "cpu",
	Short: "Show CPU capabilities and the selected register preset",
	Long: `Display the hardware capabilities that drive tuning decisions: ISA
features used by the hashing code paths, vendor and generation
classification, the register preset that would be applied, and whether
the MSR interface and L3 cache allocation are usable on this host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCPUInfo()
	},
}

func runCPUInfo() error {
	feats := cfg.CPUDetector.Detect()
	vendor := cpu.DetectVendor()
	gen := cpu.DetectGeneration(vendor)
	mod := tuning.ModFor(vendor, gen)

	logger.Header("=== CPU Information ===")
	fmt.Printf("Brand:         %s\n", feats.Brand)
	fmt.Printf("Vendor:        %s\n", vendor)
	fmt.Printf("Family/Model:  0x%x / 0x%x\n", cpu.Family(), cpu.Model())
	fmt.Printf("Logical cores: %d\n", cpu.LogicalCores())

	logger.Header("\n=== Hashing Features ===")
	fmt.Printf("AES-NI:   %s\n", yesNo(feats.HasAES))
	fmt.Printf("AVX2:     %s\n", yesNo(feats.HasAVX2))
	fmt.Printf("AVX512F:  %s\n", yesNo(feats.HasAVX512F))
	fmt.Printf("BMI2:     %s\n", yesNo(feats.HasBMI2))

	logger.Header("\n=== Tuning ===")
	fmt.Printf("Register preset:     %s\n", mod)
	fmt.Printf("Preset registers:    %d\n", len(tuning.Preset(mod)))
	fmt.Printf("L3 cache allocation: %s\n", yesNo(cpu.HasCATL3()))

	m := msr.New(log)
	if m.IsAvailable() {
		logger.Success("MSR interface is available (%d cores)", m.Cores())
	} else {
		logger.Warning("MSR interface is not available")
		fmt.Println("  Run: sudo modprobe msr allow_writes=on")
	}

	if mod == tuning.ModNone {
		logger.Info("No register preset exists for this CPU; tune would run untuned")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(cpuCmd)
}
