package tuning

import (
	"github.com/hashicorp/go-multierror"

	"rxtune/internal/cpu"
	"rxtune/internal/errors"
	"rxtune/internal/logger"
	"rxtune/internal/msr"
)

// modAutoDetect makes Apply classify the running CPU on first use
const modAutoDetect = Mod(-1)

// Engine applies a register preset to every core and can restore the
// original values at shutdown. It is control-plane code: Apply and
// Restore are called once each from a single orchestrating goroutine and
// are not safe for concurrent use.
type Engine struct {
	msr *msr.MSR
	log logger.Logger

	mod         Mod
	initialized bool
	enabled     bool
	cacheQoS    bool
	backup      msr.Items

	// capability probe, swapped out in tests
	catProbe func() bool
}

// New creates an engine that auto-detects the preset for the running CPU
func New(m *msr.MSR, log logger.Logger) *Engine {
	return &Engine{msr: m, log: log, mod: modAutoDetect, catProbe: cpu.HasCATL3}
}

// NewForMod creates an engine pinned to an explicit preset. Used for the
// custom preset slot and by tests.
func NewForMod(m *msr.MSR, mod Mod, log logger.Logger) *Engine {
	return &Engine{msr: m, log: log, mod: mod, catProbe: cpu.HasCATL3}
}

// IsEnabled reports whether a preset is currently applied
func (e *Engine) IsEnabled() bool {
	return e.enabled
}

// Mod returns the preset selected at Apply time (ModNone before Apply)
func (e *Engine) Mod() Mod {
	if e.mod == modAutoDetect {
		return ModNone
	}
	return e.mod
}

// Apply tunes every core with the selected preset and, when requested and
// supported, partitions L3 cache between hot (hashing) and cold cores.
// Returns whether tuning is enabled. Calling Apply again without an
// intervening Restore returns the previous result without touching
// hardware, so the backup set is never overwritten.
func (e *Engine) Apply(hotCores []int, cacheQoS bool) bool {
	if e.initialized {
		return e.enabled
	}
	e.initialized = true
	e.enabled = false
	e.cacheQoS = cacheQoS

	if e.mod == modAutoDetect {
		e.mod = DetectMod(e.log)
	}
	preset := Preset(e.mod)
	if e.mod == ModNone || len(preset) == 0 {
		e.log.Info("No register preset for this CPU, continuing untuned")
		return false
	}

	if !e.msr.IsAvailable() {
		e.log.Error("Cannot apply register preset",
			"error", errors.MSRUnavailable(nil).Message)
		e.log.Warn("Hashing throughput will be lower without register tuning")
		e.log.Warn("Run: sudo modprobe msr allow_writes=on")
		return false
	}

	e.log.Info("Applying register preset",
		"mod", e.mod.String(), "cores", e.msr.Cores())

	// Snapshot every register before the first write. A failed read
	// aborts the whole apply with no backup retained: restore must never
	// write values we are not certain about.
	backup := make(msr.Items, 0, len(preset))
	for _, item := range preset {
		orig, err := e.msr.Read(item.Reg, msr.AnyCore)
		if err != nil {
			e.log.Error("Failed to back up register",
				"register", item.String(), "error", err)
			return false
		}
		backup = append(backup, orig)
	}
	e.backup = backup

	hot := make(map[int]struct{}, len(hotCores))
	for _, c := range hotCores {
		hot[c] = struct{}{}
	}

	qosActive := cacheQoS
	if qosActive && len(hotCores) == 0 {
		e.log.Warn("Cache QoS requires hashing core affinities, disabling")
		qosActive = false
	}
	if qosActive && !e.catProbe() {
		e.log.Warn("This CPU does not support L3 cache allocation, cache QoS is unavailable")
		qosActive = false
	}

	err := e.msr.ForEachCore(func(core int) error {
		for _, item := range preset {
			if err := e.msr.Write(item, core, false); err != nil {
				return err
			}
		}
		if !qosActive {
			return nil
		}
		if _, isHot := hot[core]; isHot {
			// Service class 0 keeps the full L3 mask
			return e.msr.WriteValue(regPQRAssoc, 0, core, msr.NoMask, false)
		}
		// Empty the class-1 mask; some parts reject the all-zero mask,
		// in which case a single way is the smallest footprint allowed
		if err := e.msr.WriteValue(regL3COS1Mask, 0, core, msr.NoMask, false); err != nil {
			if err := e.msr.WriteValue(regL3COS1Mask, 1, core, msr.NoMask, false); err != nil {
				return err
			}
		}
		return e.msr.WriteValue(regPQRAssoc, cos1Assign, core, msr.NoMask, false)
	})
	if err != nil {
		// Backup stays captured: the caller can still restore whatever
		// was changed before the failure
		e.log.Error("Failed to apply register preset", "error", err)
		e.log.Warn("Hashing throughput will be lower; original values will be restored on exit")
		return false
	}

	e.enabled = true
	e.log.Info("Register preset applied", "mod", e.mod.String())
	if qosActive {
		e.log.Info("Cache QoS enabled", "cores", len(hotCores))
	}
	return true
}

// Restore writes the backed-up register values to every core, in original
// order. It is best-effort and single-shot: failures on one core do not
// stop the remaining cores, all failures are aggregated, and the backup
// is cleared regardless of outcome. Without a backup it is a no-op.
func (e *Engine) Restore() error {
	if !e.initialized || len(e.backup) == 0 {
		return nil
	}

	defer func() {
		e.backup = nil
		e.initialized = false
		e.enabled = false
		e.mod = modAutoDetect
	}()

	if !e.msr.IsAvailable() {
		e.log.Error("Cannot restore register values, MSR interface unavailable")
		return errors.MSRUnavailable(nil)
	}

	e.log.Info("Restoring original register values", "cores", e.msr.Cores())

	var result *multierror.Error
	cores := e.msr.Cores()
	for core := 0; core < cores; core++ {
		for _, item := range e.backup {
			if err := e.msr.Write(item, core, false); err != nil {
				result = multierror.Append(result, err)
				break
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		e.log.Warn("Some register values could not be restored", "error", err)
		return err
	}
	e.log.Info("Original register values restored")
	return nil
}
