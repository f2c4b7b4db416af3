package tuning

import (
	"testing"

	"rxtune/internal/cpu"
	"rxtune/internal/msr"
)

// ──────────────────────────────────────────────────────────────────────────────
// Preset table
// ──────────────────────────────────────────────────────────────────────────────

func TestPreset_TableShape(t *testing.T) {
	tests := []struct {
		mod  Mod
		regs int
	}{
		{ModNone, 0},
		{ModRyzen17h, 4},
		{ModRyzen19h, 4},
		{ModZen4, 4},
		{ModZen5, 4},
		{ModIntel, 1},
		{ModCustom, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mod.String(), func(t *testing.T) {
			if got := len(Preset(tt.mod)); got != tt.regs {
				t.Errorf("Preset(%s) has %d registers, want %d", tt.mod, got, tt.regs)
			}
		})
	}
}

func TestPreset_OutOfRange(t *testing.T) {
	if Preset(Mod(-1)) != nil {
		t.Error("negative mod should have no preset")
	}
	if Preset(modMax) != nil {
		t.Error("out-of-range mod should have no preset")
	}
}

func TestPreset_PrefetcherMaskedWrite(t *testing.T) {
	// Every AMD preset touches 0xC0011021 under a mask that excludes bit
	// 0x20; an unconditional write there is a regression
	for _, mod := range []Mod{ModRyzen17h, ModRyzen19h, ModZen4, ModZen5} {
		var found bool
		for _, item := range Preset(mod) {
			if item.Reg != 0xC0011021 {
				continue
			}
			found = true
			if item.Mask == msr.NoMask {
				t.Errorf("%s: 0xC0011021 written without a mask", mod)
			}
			if item.Mask&0x20 != 0 {
				t.Errorf("%s: mask 0x%x does not exclude bit 0x20", mod, item.Mask)
			}
		}
		if !found {
			t.Errorf("%s: preset does not touch 0xC0011021", mod)
		}
	}
}

func TestPreset_IntelValues(t *testing.T) {
	preset := Preset(ModIntel)
	if len(preset) != 1 {
		t.Fatalf("intel preset has %d items, want 1", len(preset))
	}
	if preset[0].Reg != 0x1A4 || preset[0].Value != 0xF {
		t.Errorf("intel preset = %s, want 0x1A4:0xF", preset[0])
	}
	if preset[0].Mask != msr.NoMask {
		t.Error("intel prefetcher disable is an unconditional write")
	}
}

func TestPreset_Zen4Zen5Share(t *testing.T) {
	z4, z5 := Preset(ModZen4), Preset(ModZen5)
	if len(z4) != len(z5) {
		t.Fatal("zen4 and zen5 presets should be the same shape")
	}
	for i := range z4 {
		if z4[i] != z5[i] {
			t.Errorf("item %d differs: zen4 %s, zen5 %s", i, z4[i], z5[i])
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Mod selection
// ──────────────────────────────────────────────────────────────────────────────

func TestModFor(t *testing.T) {
	tests := []struct {
		name   string
		vendor cpu.Vendor
		gen    cpu.Generation
		want   Mod
	}{
		{"AMD Zen2", cpu.VendorAMD, cpu.GenerationZen2, ModRyzen17h},
		{"AMD Zen3", cpu.VendorAMD, cpu.GenerationZen3, ModRyzen19h},
		{"AMD Zen4", cpu.VendorAMD, cpu.GenerationZen4, ModZen4},
		{"AMD Zen5", cpu.VendorAMD, cpu.GenerationZen5, ModZen5},
		{"AMD unclassified", cpu.VendorAMD, cpu.GenerationNone, ModNone},
		{"Intel any generation", cpu.VendorIntel, cpu.GenerationNone, ModIntel},
		{"unknown vendor", cpu.VendorUnknown, cpu.GenerationZen4, ModNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModFor(tt.vendor, tt.gen); got != tt.want {
				t.Errorf("ModFor(%v, %v) = %v, want %v", tt.vendor, tt.gen, got, tt.want)
			}
		})
	}
}

func TestModString(t *testing.T) {
	tests := []struct {
		mod  Mod
		want string
	}{
		{ModNone, "none"},
		{ModRyzen17h, "ryzen_17h"},
		{ModRyzen19h, "ryzen_19h"},
		{ModZen4, "ryzen_zen4"},
		{ModZen5, "ryzen_zen5"},
		{ModIntel, "intel"},
		{ModCustom, "custom"},
		{Mod(-1), "none"},
		{Mod(99), "none"},
	}
	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Mod(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}
