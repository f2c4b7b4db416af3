package cpu

import (
	"os"
	"runtime"
	"strings"

	cpuid "github.com/klauspost/cpuid/v2"
)

// Vendor categorises the CPU manufacturer for preset selection.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorAMD
	VendorIntel
)

func (v Vendor) String() string {
	switch v {
	case VendorAMD:
		return "AuthenticAMD"
	case VendorIntel:
		return "GenuineIntel"
	}
	return "unknown"
}

// Generation is the coarse micro-architecture generation used to pick a
// register preset. Only AMD needs sub-generation resolution; all Intel
// CPUs share a single preset.
type Generation int

const (
	GenerationNone Generation = iota
	GenerationZen2             // family 17h: Zen/Zen+/Zen2
	GenerationZen3             // family 19h, model < 0x10
	GenerationZen4             // family 19h, model 0x10..0x6F
	GenerationZen5             // family 19h, model >= 0x70
)

func (g Generation) String() string {
	switch g {
	case GenerationZen2:
		return "ryzen_17h"
	case GenerationZen3:
		return "ryzen_19h"
	case GenerationZen4:
		return "ryzen_zen4"
	case GenerationZen5:
		return "ryzen_zen5"
	}
	return "none"
}

// DetectVendor compares the 12-character CPUID vendor string against the
// two known manufacturers. Anything else means no tuning is available.
func DetectVendor() Vendor {
	switch cpuid.CPU.VendorString {
	case "AuthenticAMD":
		return VendorAMD
	case "GenuineIntel":
		return VendorIntel
	}
	return VendorUnknown
}

// ClassifyAMD maps an AMD display family/model pair to a generation.
// Family and model must already be composed from the packed leaf-1 fields
// (family = base + extended family, model = extended model<<4 | base),
// which is how the cpuid library reports them.
func ClassifyAMD(family, model int) Generation {
	switch family {
	case 0x17:
		return GenerationZen2
	case 0x19:
		// Zen3 and Zen4 share family 19h; models split the generations
		switch {
		case model >= 0x70:
			return GenerationZen5
		case model >= 0x10:
			return GenerationZen4
		default:
			return GenerationZen3
		}
	}
	return GenerationNone
}

// DetectGeneration resolves the running CPU's generation. Only meaningful
// for VendorAMD; other vendors always report GenerationNone.
func DetectGeneration(vendor Vendor) Generation {
	if vendor != VendorAMD {
		return GenerationNone
	}
	return ClassifyAMD(cpuid.CPU.Family, cpuid.CPU.Model)
}

// Family returns the composed CPU family number
func Family() int { return cpuid.CPU.Family }

// Model returns the composed CPU model number
func Model() int { return cpuid.CPU.Model }

// HasCATL3 reports whether the CPU supports L3 cache allocation
// (CPUID leaf 0x10, EBX bit 1). The kernel surfaces that capability bit
// as the "cat_l3" flag in /proc/cpuinfo, which is where we read it.
func HasCATL3() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return false
	}
	return hasCPUFlag(string(data), "cat_l3")
}

// hasCPUFlag scans the flags lines of /proc/cpuinfo content for a flag
func hasCPUFlag(cpuinfo, flag string) bool {
	for _, line := range strings.Split(cpuinfo, "\n") {
		if !strings.HasPrefix(line, "flags") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		for _, f := range strings.Fields(parts[1]) {
			if f == flag {
				return true
			}
		}
	}
	return false
}
