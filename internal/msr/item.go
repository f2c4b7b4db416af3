// Package msr provides access to per-core model-specific registers through
// the kernel's msr device interface, with masked read-modify-write
// semantics for registers that pack multiple independent fields.
package msr

import "fmt"

// NoMask selects every bit: the write is unconditional and the old
// register value is never read.
const NoMask = ^uint64(0)

// Item is a single register write: register ID, value, and the bit mask
// controlling which bits of the value are applied. Immutable value object.
type Item struct {
	Reg   uint32
	Value uint64
	Mask  uint64
}

// NewItem creates an unmasked register item
func NewItem(reg uint32, value uint64) Item {
	return Item{Reg: reg, Value: value, Mask: NoMask}
}

// NewMaskedItem creates a register item with an explicit bit mask
func NewMaskedItem(reg uint32, value, mask uint64) Item {
	return Item{Reg: reg, Value: value, Mask: mask}
}

// IsValid reports whether the item refers to a real register
func (i Item) IsValid() bool {
	return i.Reg > 0
}

func (i Item) String() string {
	return fmt.Sprintf("0x%08x:0x%016x", i.Reg, i.Value)
}

// MaskedValue merges a new value into an old one under a mask:
// bits selected by the mask come from newValue, the rest keep oldValue.
func MaskedValue(oldValue, newValue, mask uint64) uint64 {
	return (newValue & mask) | (oldValue &^ mask)
}

// Items is an ordered sequence of register writes. Order matters: preset
// items are applied in sequence per core and are not assumed independent.
type Items []Item

func regString(reg uint32) string {
	return fmt.Sprintf("0x%08x", reg)
}

func valueString(value uint64) string {
	return fmt.Sprintf("0x%016x", value)
}
