package msr

import (
	"rxtune/internal/errors"
	"rxtune/internal/logger"
)

// AnyCore selects the first enumerated core for reads and writes that do
// not target a specific core.
const AnyCore = -1

// Device performs raw register IO for one core. The production
// implementation sits on the kernel msr device; tests substitute fakes.
type Device interface {
	// Available reports whether the register interface could be prepared
	// for writing (module loaded, writes unlocked, device openable).
	Available() bool

	// Cores returns the number of enumerable core IDs (0..Cores()-1).
	Cores() int

	// Read returns the 64-bit value of a register on a core.
	Read(reg uint32, core int) (uint64, error)

	// Write stores a 64-bit value into a register on a core.
	Write(reg uint32, value uint64, core int) error
}

// MSR is the register access layer used by the tuning engine and the
// msr diagnostic commands.
type MSR struct {
	dev Device
	log logger.Logger
}

// New opens the platform register interface
func New(log logger.Logger) *MSR {
	return &MSR{dev: newPlatformDevice(log), log: log}
}

// NewWithDevice wraps an explicit device (used by tests and dry runs)
func NewWithDevice(dev Device, log logger.Logger) *MSR {
	return &MSR{dev: dev, log: log}
}

// IsAvailable reports whether register writes are possible at all
func (m *MSR) IsAvailable() bool {
	return m.dev.Available()
}

// Cores returns the enumerable core count
func (m *MSR) Cores() int {
	return m.dev.Cores()
}

// Read returns the current value of a register as an Item.
// core < 0 reads from the first core. A short transfer or an unopenable
// device yields an error and an invalid item.
func (m *MSR) Read(reg uint32, core int) (Item, error) {
	if core < 0 {
		core = 0
	}
	value, err := m.dev.Read(reg, core)
	if err != nil {
		return Item{}, errors.RegisterReadFailed(reg, core, err)
	}
	return Item{Reg: reg, Value: value, Mask: NoMask}, nil
}

// Write applies a register item to a core (or the first core when
// core < 0), honoring the item's mask.
func (m *MSR) Write(item Item, core int, verbose bool) error {
	return m.WriteValue(item.Reg, item.Value, core, item.Mask, verbose)
}

// WriteValue writes value to a register under a mask. A non-trivial mask
// first reads the current value and merges; if that read fails the whole
// write fails without touching the register.
func (m *MSR) WriteValue(reg uint32, value uint64, core int, mask uint64, verbose bool) error {
	if !m.dev.Available() {
		return errors.MSRUnavailable(nil)
	}
	if core < 0 {
		core = 0
	}

	if mask != NoMask {
		oldValue, err := m.dev.Read(reg, core)
		if err != nil {
			if verbose {
				m.log.Error("Failed to read register for masking", "register", regString(reg), "core", core, "error", err)
			}
			return errors.RegisterReadFailed(reg, core, err)
		}
		value = MaskedValue(oldValue, value, mask)
		if verbose {
			m.log.Debug("Masked register merge",
				"register", regString(reg),
				"value", valueString(value),
				"core", core)
		}
	}

	if err := m.dev.Write(reg, value, core); err != nil {
		if verbose {
			m.log.Error("Failed to write register", "register", regString(reg), "core", core, "error", err)
		}
		return errors.RegisterWriteFailed(reg, core, err)
	}
	return nil
}

// ForEachCore invokes fn once per core ID in ascending order, stopping at
// the first failure. Failed cores are never retried or skipped.
func (m *MSR) ForEachCore(fn func(core int) error) error {
	cores := m.dev.Cores()
	for core := 0; core < cores; core++ {
		if err := fn(core); err != nil {
			return err
		}
	}
	return nil
}
