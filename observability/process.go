package observability

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// SelfStats exposes technical metrics (Memory, CPU, OS status) for the
// running server process, plus Go runtime counters. Feeds the debug
// inspector's stats header.
type SelfStats struct {
	proc    *process.Process
	started time.Time
}

func NewSelfStats() (*SelfStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &SelfStats{proc: p, started: time.Now()}, nil
}

// Snapshot collects the current metrics. Collection failures degrade to
// partial stats rather than erroring; this is diagnostics, not control flow.
func (s *SelfStats) Snapshot() map[string]any {
	stats := map[string]any{
		"pid":    os.Getpid(),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats["alloc_mb"] = mem.Alloc / (1 << 20)
	stats["num_gc"] = mem.NumGC
	stats["goroutines"] = runtime.NumGoroutine()

	if memInfo, err := s.proc.MemoryInfo(); err == nil {
		stats["rss_mb"] = memInfo.RSS / (1 << 20)
	}
	if cpuPercent, err := s.proc.CPUPercent(); err == nil {
		stats["cpu_percent"] = cpuPercent
	}
	if status, err := s.proc.Status(); err == nil {
		stats["status"] = status
	}
	return stats
}
