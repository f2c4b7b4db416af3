package msr

import "testing"

// ──────────────────────────────────────────────────────────────────────────────
// Masked merge semantics
// ──────────────────────────────────────────────────────────────────────────────

func TestMaskedValue(t *testing.T) {
	tests := []struct {
		name string
		old  uint64
		new  uint64
		mask uint64
		want uint64
	}{
		{"full mask replaces everything", 0xFFFF, 0x1234, NoMask, 0x1234},
		{"zero mask keeps old value", 0xFFFF, 0x1234, 0, 0xFFFF},
		{"masked-out bit survives", 0x60, 0x40, ^uint64(0x20), 0x60},
		{"masked-in bits replaced", 0x00FF, 0xAB00, 0xFF00, 0xABFF},
		{"disjoint old and new", 0xF0, 0x0F, 0x0F, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskedValue(tt.old, tt.new, tt.mask); got != tt.want {
				t.Errorf("MaskedValue(0x%x, 0x%x, 0x%x) = 0x%x, want 0x%x",
					tt.old, tt.new, tt.mask, got, tt.want)
			}
		})
	}
}

func TestMaskedValue_Identity(t *testing.T) {
	// Writing a register's own value back under any mask must be a no-op
	values := []uint64{0, 1, 0x2000CC16, ^uint64(0)}
	masks := []uint64{0, 0x20, ^uint64(0x20), NoMask}
	for _, v := range values {
		for _, m := range masks {
			if got := MaskedValue(v, v, m); got != v {
				t.Errorf("MaskedValue(0x%x, 0x%x, 0x%x) = 0x%x, want identity", v, v, m, got)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Item construction
// ──────────────────────────────────────────────────────────────────────────────

func TestNewItem_Unmasked(t *testing.T) {
	item := NewItem(0xC0011020, 0x1510000)
	if item.Mask != NoMask {
		t.Errorf("NewItem mask = 0x%x, want NoMask", item.Mask)
	}
	if !item.IsValid() {
		t.Error("item with non-zero register should be valid")
	}
}

func TestNewMaskedItem(t *testing.T) {
	item := NewMaskedItem(0xC0011021, 0x40, ^uint64(0x20))
	if item.Mask == NoMask {
		t.Error("masked item should not carry NoMask")
	}
	if item.Value != 0x40 {
		t.Errorf("value = 0x%x, want 0x40", item.Value)
	}
}

func TestItem_IsValid(t *testing.T) {
	if (Item{}).IsValid() {
		t.Error("zero item should be invalid")
	}
	if !NewItem(0x1A4, 0xF).IsValid() {
		t.Error("real register should be valid")
	}
}

func TestItem_String(t *testing.T) {
	item := NewItem(0xC001102B, 0x2000CC16)
	want := "0xc001102b:0x000000002000cc16"
	if got := item.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
