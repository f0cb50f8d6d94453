package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a point-in-time view of process and host resources for the run
// report. Fields that could not be read stay zero.
type Stats struct {
	ProcessRSS    uint64
	HeapAlloc     uint64
	HostTotal     uint64
	HostAvailable uint64
	HostUsedPct   float64
	LogicalCPUs   int
	Goroutines    int
}

// Collect reads the current stats. Errors from individual probes are
// joined but do not stop the others.
func Collect() (Stats, error) {
	var s Stats
	var errs []error

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc
	s.Goroutines = runtime.NumGoroutine()

	if p, err := process.NewProcess(int32(os.Getpid())); err != nil {
		errs = append(errs, err)
	} else if info, err := p.MemoryInfo(); err != nil {
		errs = append(errs, err)
	} else {
		s.ProcessRSS = info.RSS
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		errs = append(errs, err)
	} else {
		s.HostTotal = vm.Total
		s.HostAvailable = vm.Available
		s.HostUsedPct = vm.UsedPercent
	}

	if n, err := cpu.Counts(true); err != nil {
		errs = append(errs, err)
		s.LogicalCPUs = runtime.NumCPU()
	} else {
		s.LogicalCPUs = n
	}

	if len(errs) > 0 {
		return s, fmt.Errorf("system stats: %v", errs)
	}
	return s, nil
}

// MB formats a byte count as mebibytes.
func MB(b uint64) string {
	return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
}
