//go:build linux

package msr

import (
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"

	"rxtune/internal/logger"
)

// Small register offsets keep the in-memory device files tiny; real MSR
// addresses would need multi-gigabyte sparse files.
const testReg = 0x10

func newTestFs(cores int, fileSize int) afero.Fs {
	fs := afero.NewMemMapFs()
	for core := 0; core < cores; core++ {
		_ = afero.WriteFile(fs, devicePath(core), make([]byte, fileSize), 0o600)
	}
	return fs
}

func TestLinuxDevice_AvailableWhenWritesUnlock(t *testing.T) {
	d := newLinuxDevice(newTestFs(1, 64), 1, logger.NewNullLogger())
	if !d.Available() {
		t.Error("device should be available once allow_writes is accepted")
	}
}

func TestLinuxDevice_ReadWriteRoundTrip(t *testing.T) {
	d := newLinuxDevice(newTestFs(2, 64), 2, logger.NewNullLogger())

	const value = uint64(0x2000CC16)
	if err := d.Write(testReg, value, 1); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := d.Read(testReg, 1)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != value {
		t.Errorf("Read = 0x%x, want 0x%x", got, value)
	}

	// The neighbouring core must be untouched
	other, err := d.Read(testReg, 0)
	if err != nil {
		t.Fatalf("Read core 0 failed: %v", err)
	}
	if other != 0 {
		t.Errorf("core 0 register = 0x%x, want 0", other)
	}
}

func TestLinuxDevice_LittleEndianLayout(t *testing.T) {
	fs := newTestFs(1, 64)
	d := newLinuxDevice(fs, 1, logger.NewNullLogger())

	if err := d.Write(testReg, 0x0102030405060708, 0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := afero.ReadFile(fs, devicePath(0))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got := binary.LittleEndian.Uint64(data[testReg:]); got != 0x0102030405060708 {
		t.Errorf("on-device bytes decode to 0x%x", got)
	}
	if data[testReg] != 0x08 {
		t.Errorf("first byte = 0x%x, want little-endian low byte 0x08", data[testReg])
	}
}

func TestLinuxDevice_MissingDevice(t *testing.T) {
	// Core 5 has no device node
	d := newLinuxDevice(newTestFs(1, 64), 1, logger.NewNullLogger())
	if _, err := d.Read(testReg, 5); err == nil {
		t.Error("expected error reading a missing device node")
	}
	if err := d.Write(testReg, 1, 5); err == nil {
		t.Error("expected error writing a missing device node")
	}
}

func TestLinuxDevice_ShortRead(t *testing.T) {
	// File ends mid-register: 4 of the 8 bytes at the offset exist
	d := newLinuxDevice(newTestFs(1, testReg+4), 1, logger.NewNullLogger())
	if _, err := d.Read(testReg, 0); err == nil {
		t.Error("expected short read to fail")
	}
}
