package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/system"
)

// report prints the performance summary and appends one line to
// benchmark.log in the output directory.
func (p *Project) report(res *Result) {
	snap := p.Recorder.Snapshot()
	stats, err := system.Collect()
	if err != nil {
		log.Debug().Err(err).Msg("system stats incomplete")
	}

	avgRender := time.Duration(0)
	if snap.Renders > 0 {
		avgRender = snap.RenderTime / time.Duration(snap.Renders)
	}
	fps := 0.0
	if res.ExportTime > 0 {
		fps = float64(res.Frames) / res.ExportTime.Seconds()
	}

	p.printf("--- [PERFORMANCE REPORT] ---\n"+
		"Build: %s\n"+
		"Total Time: %.2fs\n"+
		"Logo Loading: %.2fs (%d loaded, %d failed)\n"+
		"Export (%s): %.2fs\n"+
		"Frames: %d | Avg Render: %s | Effective FPS: %.2f\n"+
		"Output Size: %s\n"+
		"Memory: RSS %s | Heap %s | Host %.0f%% of %s used\n"+
		"CPUs: %d | Goroutines: %d\n"+
		"----------------------------\n",
		p.Config.BuildVersion,
		res.Total.Seconds(),
		res.LogoWait.Seconds(), snap.LogoLoads-snap.LogoErrors, snap.LogoErrors,
		res.Format, res.ExportTime.Seconds(),
		res.Frames, avgRender.Round(time.Microsecond), fps,
		system.MB(uint64(res.Bytes)),
		system.MB(stats.ProcessRSS), system.MB(stats.HeapAlloc), stats.HostUsedPct, system.MB(stats.HostTotal),
		stats.LogicalCPUs, stats.Goroutines,
	)

	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Format: %s | Frames: %d | Total: %.2fs | Export: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(res.InputPath),
		res.Format,
		res.Frames,
		res.Total.Seconds(),
		res.ExportTime.Seconds(),
		fps,
	)
	logPath := filepath.Join(filepath.Dir(res.OutputPath), "benchmark.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.printf("[!] Не удалось записать benchmark.log: %v\n", err)
		return
	}
	defer f.Close()
	f.WriteString(entry)
}
