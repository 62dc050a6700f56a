package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"

	"code-lab/domain"
)

// ProcessWatchdog tracks every child process spawned for code
// execution. It polls the process table on a fixed interval, logs
// resource usage of live children, and prunes entries whose process
// has exited. The runner reports children through trackerChan; the
// watchdog never owns or kills them, the runner's deadline does that.
type ProcessWatchdog struct {
	mu             sync.Mutex
	log            *slog.Logger
	trackerChan    chan domain.Process
	metricInterval time.Duration
	processes      map[domain.PID]domain.Process
}

func NewProcessWatchdog(log *slog.Logger, trackerChan chan domain.Process, metricInterval time.Duration) *ProcessWatchdog {
	return &ProcessWatchdog{
		log:            log,
		trackerChan:    trackerChan,
		metricInterval: metricInterval,
		processes:      make(map[domain.PID]domain.Process),
	}
}

// ActiveCount reports how many tracked children are still known live.
func (w *ProcessWatchdog) ActiveCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.processes)
}

func (w *ProcessWatchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process watchdog")
			return nil
		case proc := <-w.trackerChan:
			w.mu.Lock()
			w.processes[proc.PID] = proc
			w.mu.Unlock()
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep polls every tracked pid. A pid the process table no longer
// knows has exited and is pruned.
func (w *ProcessWatchdog) sweep() {
	w.mu.Lock()
	tracked := make(map[domain.PID]domain.Process, len(w.processes))
	for pid, proc := range w.processes {
		tracked[pid] = proc
	}
	w.mu.Unlock()

	for pid, proc := range tracked {
		p, err := process.NewProcess(int32(pid))
		if err != nil {
			w.mu.Lock()
			delete(w.processes, pid)
			w.mu.Unlock()
			w.log.Debug("Execution child finished", "pid", pid, "language", proc.Language)
			continue
		}
		status, err := p.Status()
		if err != nil {
			w.log.Error("Error while finding process status", "err", err)
			continue
		}
		cpu, err := p.CPUPercent()
		if err != nil {
			w.log.Error("Error while finding process cpu usage", "err", err)
			continue
		}
		ram, err := p.MemoryPercent()
		if err != nil {
			w.log.Error("Error while finding process ram usage", "err", err)
			continue
		}
		w.log.Debug("Execution child alive",
			"pid", pid,
			"language", proc.Language,
			"status", domain.ToStatus(status),
			"cpu_percent", cpu,
			"ram_percent", ram,
			"age", time.Since(proc.StartedAt),
		)
	}
}
