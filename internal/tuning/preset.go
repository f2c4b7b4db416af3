// Package tuning owns the per-architecture register presets and the
// engine that applies them across cores, optionally partitioning L3 cache
// between hashing and non-hashing cores via cache QoS service classes.
package tuning

import (
	"rxtune/internal/cpu"
	"rxtune/internal/logger"
	"rxtune/internal/msr"
)

// Mod identifies which register preset applies to the running CPU.
type Mod int

const (
	ModNone Mod = iota
	ModRyzen17h
	ModRyzen19h
	ModZen4
	ModZen5
	ModIntel
	ModCustom
	modMax
)

var modNames = [...]string{
	"none", "ryzen_17h", "ryzen_19h", "ryzen_zen4", "ryzen_zen5", "intel", "custom",
}

func (m Mod) String() string {
	if m < 0 || int(m) >= len(modNames) {
		return "none"
	}
	return modNames[m]
}

// Cache QoS service-class registers. Hashing cores get class 0 (the full
// L3 mask); every other core is bound to class 1 with an emptied mask.
const (
	regPQRAssoc   = 0xC8F // IA32_PQR_ASSOC: class-of-service selector
	regL3COS1Mask = 0xC91 // L3 capacity bitmask for class of service 1

	cos1Assign = uint64(1) << 32 // PQR_ASSOC value binding a core to class 1
)

// presets holds the per-architecture register sequences, indexed by Mod.
// Pure data: the values come from the corresponding vendor erratum and
// tuning guidance and are applied in order, per core.
var presets = [modMax]msr.Items{
	ModNone: nil,

	// Zen/Zen+/Zen2
	ModRyzen17h: {
		msr.NewItem(0xC0011020, 0),
		msr.NewMaskedItem(0xC0011021, 0x40, ^uint64(0x20)),
		msr.NewItem(0xC0011022, 0x1510000),
		msr.NewItem(0xC001102B, 0x2000CC16),
	},

	// Zen3
	ModRyzen19h: {
		msr.NewItem(0xC0011020, 0x0004480000000000),
		msr.NewMaskedItem(0xC0011021, 0x001C000200000040, ^uint64(0x20)),
		msr.NewItem(0xC0011022, 0xC000000401570000),
		msr.NewItem(0xC001102B, 0x2000CC10),
	},

	ModZen4: {
		msr.NewItem(0xC0011020, 0x0004400000000000),
		msr.NewMaskedItem(0xC0011021, 0x0004000000000040, ^uint64(0x20)),
		msr.NewItem(0xC0011022, 0x8680000401570000),
		msr.NewItem(0xC001102B, 0x2040CC10),
	},

	ModZen5: {
		msr.NewItem(0xC0011020, 0x0004400000000000),
		msr.NewMaskedItem(0xC0011021, 0x0004000000000040, ^uint64(0x20)),
		msr.NewItem(0xC0011022, 0x8680000401570000),
		msr.NewItem(0xC001102B, 0x2040CC10),
	},

	ModIntel: {
		msr.NewItem(0x1A4, 0xF),
	},

	// Reserved slot for operator-supplied presets
	ModCustom: nil,
}

// Preset returns the register sequence for a mod (nil for ModNone/unknown)
func Preset(m Mod) msr.Items {
	if m < 0 || m >= modMax {
		return nil
	}
	return presets[m]
}

// ModFor maps a classified (vendor, generation) pair to its preset table
// index. Unknown vendors and unrecognized generations select ModNone,
// which is "no tuning available" rather than an error.
func ModFor(vendor cpu.Vendor, gen cpu.Generation) Mod {
	switch vendor {
	case cpu.VendorAMD:
		switch gen {
		case cpu.GenerationZen2:
			return ModRyzen17h
		case cpu.GenerationZen3:
			return ModRyzen19h
		case cpu.GenerationZen4:
			return ModZen4
		case cpu.GenerationZen5:
			return ModZen5
		}
		return ModNone
	case cpu.VendorIntel:
		return ModIntel
	}
	return ModNone
}

// DetectMod classifies the running CPU and picks its preset
func DetectMod(log logger.Logger) Mod {
	vendor := cpu.DetectVendor()
	gen := cpu.DetectGeneration(vendor)
	mod := ModFor(vendor, gen)

	switch {
	case vendor == cpu.VendorUnknown:
		log.Info("Unknown CPU vendor, no register preset available")
	case mod == ModNone:
		log.Info("No register preset for this CPU generation",
			"preset", vendor.String())
	default:
		log.Info("Detected CPU for register tuning",
			"mod", mod.String(), "preset", vendor.String())
	}
	return mod
}
