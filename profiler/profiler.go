// Package profiler observes the Go runtime around a benchmark run so
// reports can flag interference the measurement core itself cannot see:
// garbage collections that fired during the measurement window, goroutines
// that appeared, heap growth.
//
// The monitor never touches the run itself (snapshots are taken strictly
// before and after the measured region) and its findings are advisory
// context, never a fault.
package profiler

import "runtime"

// RuntimeSnapshot is a point-in-time view of the Go runtime counters that
// matter for measurement hygiene.
type RuntimeSnapshot struct {
	NumGC        uint32 `json:"num_gc"`
	PauseTotalNs uint64 `json:"pause_total_ns"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapObjects  uint64 `json:"heap_objects"`
	Goroutines   int    `json:"goroutines"`
}

// Interference is the delta between two runtime snapshots across a
// measurement window.
type Interference struct {
	GCCycles     uint32 `json:"gc_cycles"`
	GCPauseNs    uint64 `json:"gc_pause_ns"`
	HeapGrowth   int64  `json:"heap_growth"`
	NewGoroutine int    `json:"new_goroutines"`
}

// Clean reports whether the window was free of runtime interference: no GC
// cycle fired and no goroutine appeared.
func (i Interference) Clean() bool {
	return i.GCCycles == 0 && i.NewGoroutine == 0
}

// Snapshot reads the current runtime counters.
func Snapshot() RuntimeSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return RuntimeSnapshot{
		NumGC:        ms.NumGC,
		PauseTotalNs: ms.PauseTotalNs,
		HeapAlloc:    ms.HeapAlloc,
		HeapObjects:  ms.HeapObjects,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// Between computes the interference delta across a window.
func Between(start, end RuntimeSnapshot) Interference {
	return Interference{
		GCCycles:     end.NumGC - start.NumGC,
		GCPauseNs:    end.PauseTotalNs - start.PauseTotalNs,
		HeapGrowth:   int64(end.HeapAlloc) - int64(start.HeapAlloc),
		NewGoroutine: end.Goroutines - start.Goroutines,
	}
}

// Quiesce encourages a quiet measurement window: it forces a collection now
// so the garbage collector is unlikely to fire mid-run. Call before warmup,
// never inside the measured region.
func Quiesce() {
	runtime.GC()
}
