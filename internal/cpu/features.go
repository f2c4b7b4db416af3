// Package cpu detects processor capabilities and topology for the tuning
// engine: ISA feature bits used to pick the fastest hashing code path,
// vendor/generation classification used to select a register preset, and
// the L3 cache-allocation capability probe used by cache QoS.
package cpu

import (
	"runtime"
	"strings"
	"sync"

	cpuid "github.com/klauspost/cpuid/v2"
	gcpu "github.com/shirou/gopsutil/v3/cpu"
)

// maxBrandLen bounds the brand string to the size of the three
// 16-byte CPUID brand chunks minus the terminator.
const maxBrandLen = 63

// Features summarises the hardware capabilities relevant to the hashing
// workload. It is computed once per process and immutable afterwards.
type Features struct {
	Brand      string `json:"brand"`
	HasAES     bool   `json:"has_aes"`      // AES-NI (dataset initialization)
	HasAVX2    bool   `json:"has_avx2"`     // 256-bit SIMD fast path
	HasAVX512F bool   `json:"has_avx512f"`  // AVX-512 Foundation
	HasBMI2    bool   `json:"has_bmi2"`     // PEXT/PDEP scratchpad addressing
}

// Detector caches feature detection results. Detection runs exactly once
// per Detector no matter how many callers race on the first query.
type Detector struct {
	once  sync.Once
	feats Features
}

// NewDetector creates a new CPU feature detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the cached feature set, computing it on first call.
// There is no error path: unsupported architectures yield a degraded
// result with all capability flags false.
func (d *Detector) Detect() Features {
	d.once.Do(func() {
		d.feats = detectFeatures()
	})
	return d.feats
}

// HasAES reports AES-NI support
func (d *Detector) HasAES() bool { return d.Detect().HasAES }

// HasAVX2 reports AVX2 support
func (d *Detector) HasAVX2() bool { return d.Detect().HasAVX2 }

// HasAVX512F reports AVX-512 Foundation support
func (d *Detector) HasAVX512F() bool { return d.Detect().HasAVX512F }

// HasBMI2 reports BMI2 support
func (d *Detector) HasBMI2() bool { return d.Detect().HasBMI2 }

// Brand returns the trimmed CPU brand string
func (d *Detector) Brand() string { return d.Detect().Brand }

func detectFeatures() Features {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" {
		// No CPUID instruction: conservative defaults instead of failure
		return Features{Brand: "Non-x86 CPU"}
	}

	// cpuid assembles the brand string from the extended identification
	// leaves (0x80000002..04); an empty result means the CPU predates them
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = "Unknown CPU"
	}
	if len(brand) > maxBrandLen {
		brand = brand[:maxBrandLen]
	}

	return Features{
		Brand:      brand,
		HasAES:     cpuid.CPU.Supports(cpuid.AESNI),
		HasAVX2:    cpuid.CPU.Supports(cpuid.AVX2),
		HasAVX512F: cpuid.CPU.Supports(cpuid.AVX512F),
		HasBMI2:    cpuid.CPU.Supports(cpuid.BMI2),
	}
}

// LogicalCores returns the number of logical CPUs visible to the host.
// Register writes are applied to core IDs 0..LogicalCores()-1.
func LogicalCores() int {
	if n, err := gcpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
