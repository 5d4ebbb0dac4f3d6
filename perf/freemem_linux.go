//go:build linux

package perf

import "golang.org/x/sys/unix"

// freeMemory returns the free RAM reported by sysinfo(2).
func freeMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return heapFree()
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}
