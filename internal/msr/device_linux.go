//go:build linux

package msr

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/afero"

	"rxtune/internal/cpu"
	"rxtune/internal/logger"
)

// allowWritesPath unlocks wrmsr on kernels where the msr module defaults
// to read-only (5.9+).
const allowWritesPath = "/sys/module/msr/parameters/allow_writes"

// linuxDevice talks to the per-core /dev/cpu/<n>/msr character devices.
// The filesystem is abstracted so tests can run against an in-memory tree.
type linuxDevice struct {
	fs        afero.Fs
	cores     int
	available bool
	log       logger.Logger
}

func newPlatformDevice(log logger.Logger) Device {
	return newLinuxDevice(afero.NewOsFs(), cpu.LogicalCores(), log)
}

func newLinuxDevice(fs afero.Fs, cores int, log logger.Logger) *linuxDevice {
	d := &linuxDevice{fs: fs, cores: cores, log: log}
	d.available = d.allowWrites() || d.modprobe()
	if !d.available {
		log.Warn("msr kernel module is not available",
			"error", "run: sudo modprobe msr allow_writes=on")
	}
	return d
}

// allowWrites flips the module parameter that gates wrmsr
func (d *linuxDevice) allowWrites() bool {
	return afero.WriteFile(d.fs, allowWritesPath, []byte("on"), 0o644) == nil
}

// modprobe loads the module with writes enabled when the parameter file
// does not exist yet (module not loaded)
func (d *linuxDevice) modprobe() bool {
	return exec.Command("/sbin/modprobe", "msr", "allow_writes=on").Run() == nil
}

func (d *linuxDevice) Available() bool {
	return d.available
}

func (d *linuxDevice) Cores() int {
	return d.cores
}

func devicePath(core int) string {
	return fmt.Sprintf("/dev/cpu/%d/msr", core)
}

// Read prereads 8 bytes at the register offset; anything less is a failure
func (d *linuxDevice) Read(reg uint32, core int) (uint64, error) {
	f, err := d.fs.Open(devicePath(core))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var buf [8]byte
	n, err := f.ReadAt(buf[:], int64(reg))
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return 0, fmt.Errorf("short read: %d of %d bytes", n, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Write pwrites 8 bytes at the register offset; a short transfer fails
func (d *linuxDevice) Write(reg uint32, value uint64, core int) error {
	f, err := d.fs.OpenFile(devicePath(core), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	n, err := f.WriteAt(buf[:], int64(reg))
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(buf))
	}
	return nil
}
