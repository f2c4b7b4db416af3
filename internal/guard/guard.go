// Package guard provides a last-resort recovery frame for the hashing hot
// loop. Some CPU steppings are documented to rarely raise spurious
// illegal-instruction or memory faults inside the JIT-compiled hashing
// inner loop; a fault there should unwind the current iteration instead
// of killing the process.
//
// The frame is built on the runtime's structured fault primitive:
// debug.SetPanicOnFault converts a memory fault into a recoverable
// runtime.Error panic on the faulting goroutine only, which keeps the
// per-thread guard and checkpoint contract of the original signal-based
// design. Faults outside RunGuarded, or while the frame is not installed,
// propagate normally and terminate the process.
package guard

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"rxtune/internal/logger"
)

// FaultError reports a hardware fault caught inside a guarded region.
type FaultError struct {
	cause error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("hardware fault recovered in hot loop: %v", e.cause)
}

func (e *FaultError) Unwrap() error {
	return e.cause
}

// Frame is the process-wide recovery frame. Install and Remove are
// idempotent; the guard itself is per-goroutine and armed only for the
// duration of each RunGuarded call.
type Frame struct {
	installed atomic.Bool
	log       logger.Logger
}

// New creates an uninstalled recovery frame
func New(log logger.Logger) *Frame {
	return &Frame{log: log}
}

// Install activates fault recovery for subsequent RunGuarded calls.
// No-op if already installed.
func (f *Frame) Install() {
	if f.installed.Swap(true) {
		return
	}
	f.log.Info("Hot-loop fault recovery installed")
}

// Remove restores default fault behavior. No-op if not installed.
func (f *Frame) Remove() {
	if !f.installed.Swap(false) {
		return
	}
	f.log.Info("Hot-loop fault recovery removed")
}

// Installed reports whether the frame is active
func (f *Frame) Installed() bool {
	return f.installed.Load()
}

// RunGuarded executes fn with the calling goroutine's guard armed: a
// memory or illegal-access fault inside fn returns a *FaultError instead
// of terminating the process, resuming at this call site. Any other panic
// is re-raised so genuine bugs are not swallowed. When the frame is not
// installed, fn runs unguarded.
func (f *Frame) RunGuarded(fn func() error) (err error) {
	if !f.installed.Load() {
		return fn()
	}

	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		re, ok := r.(runtime.Error)
		if !ok || !isHardwareFault(re) {
			panic(r)
		}
		f.log.Warn("Recovered from fault in hot loop", "error", re.Error())
		err = &FaultError{cause: re}
	}()

	return fn()
}

// isHardwareFault distinguishes memory-access faults from other runtime
// errors (index out of range, division by zero, ...), which must not be
// hidden by the recovery frame.
func isHardwareFault(err runtime.Error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid memory address") ||
		strings.Contains(msg, "unexpected fault address")
}
