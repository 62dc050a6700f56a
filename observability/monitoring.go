// Package observability aggregates runtime telemetry for operators.
package observability

import (
	"runtime"
	"sync/atomic"
)

// Stats is the snapshot served by the stats endpoint.
type Stats struct {
	ActiveProcesses  int    `json:"active_processes"`
	ExecutionsTotal  uint64 `json:"executions_total"`
	ExecutionsFailed uint64 `json:"executions_failed"`
	RoomsOpen        int    `json:"rooms_open"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
	Goroutines       int    `json:"goroutines"`
}

type ProcessCounter interface {
	ActiveCount() int
}

type RoomCounter interface {
	Count() int
}

// Monitor collects execution counters and samples process/memory state
// on demand. Counters are atomic; Snapshot can be called from any
// handler goroutine.
type Monitor struct {
	executions atomic.Uint64
	failures   atomic.Uint64
	processes  ProcessCounter
	rooms      RoomCounter
}

func NewMonitor(processes ProcessCounter, rooms RoomCounter) *Monitor {
	return &Monitor{processes: processes, rooms: rooms}
}

func (m *Monitor) RecordExecution(failed bool) {
	m.executions.Add(1)
	if failed {
		m.failures.Add(1)
	}
}

func (m *Monitor) Snapshot() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := Stats{
		ExecutionsTotal:  m.executions.Load(),
		ExecutionsFailed: m.failures.Load(),
		AllocMemMb:       mem.Alloc / 1024 / 1024,
		NumGC:            mem.NumGC,
		Goroutines:       runtime.NumGoroutine(),
	}
	if m.processes != nil {
		stats.ActiveProcesses = m.processes.ActiveCount()
	}
	if m.rooms != nil {
		stats.RoomsOpen = m.rooms.Count()
	}
	return stats
}
