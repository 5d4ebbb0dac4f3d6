//go:build !linux

package perf

func freeMemory() uint64 {
	return heapFree()
}
