//go:build !linux

package msr

import (
	"errors"

	"rxtune/internal/cpu"
	"rxtune/internal/logger"
)

var errUnsupported = errors.New("msr device access is only supported on Linux")

// stubDevice reports the register interface as unavailable so the tuning
// engine falls back to untuned operation on non-Linux hosts.
type stubDevice struct {
	cores int
}

func newPlatformDevice(log logger.Logger) Device {
	log.Warn("Register tuning is not supported on this platform")
	return stubDevice{cores: cpu.LogicalCores()}
}

func (d stubDevice) Available() bool { return false }
func (d stubDevice) Cores() int      { return d.cores }

func (d stubDevice) Read(reg uint32, core int) (uint64, error) {
	return 0, errUnsupported
}

func (d stubDevice) Write(reg uint32, value uint64, core int) error {
	return errUnsupported
}
