//go:build !linux

package workload

// Thread pinning is unsupported off Linux; workers run unpinned.
func pinThread(core int) error {
	return nil
}
