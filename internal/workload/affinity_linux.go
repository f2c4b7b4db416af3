//go:build linux

package workload

import "golang.org/x/sys/unix"

// pinThread binds the calling OS thread to a single core via
// sched_setaffinity(2). Caller must hold runtime.LockOSThread.
func pinThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
