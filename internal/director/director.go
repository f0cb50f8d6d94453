package director

import (
	"math"
	"time"

	"github.com/ivlev/scrim2gif/internal/config"
)

// Director owns the reveal timeline: when each layer and slot appears for a
// given overall progress, and how wall-clock or frame time maps to progress.
type Director struct {
	RevealTime time.Duration // full reveal length
	Stagger    time.Duration // delay between consecutive slots
	LoopPause  time.Duration // preview pause on the finished frame
}

// NewDirector creates a Director with the configured timings. Zero or
// negative values keep the defaults.
func NewDirector(cfg *config.Config) *Director {
	d := &Director{
		RevealTime: 4500 * time.Millisecond,
		Stagger:    120 * time.Millisecond,
		LoopPause:  2500 * time.Millisecond,
	}
	if cfg != nil {
		if cfg.RevealTime > 0 {
			d.RevealTime = cfg.RevealTime
		}
		if cfg.Stagger > 0 {
			d.Stagger = cfg.Stagger
		}
		if cfg.LoopPause > 0 {
			d.LoopPause = cfg.LoopPause
		}
	}
	return d
}

// Gate is the linear ease-in used by every layer: clamp(progress*k).
func Gate(progress, k float64) float64 {
	return Clamp01(progress * k)
}

// GateFrom is Gate shifted by offset: clamp((progress-offset)*k).
func GateFrom(progress, offset, k float64) float64 {
	return Clamp01((progress - offset) * k)
}

// Layer gates.
func HeaderGate(progress float64) float64 { return Gate(progress, 4) }
func StarGate(progress float64) float64   { return Gate(progress, 4) }
func DustGate(progress float64) float64   { return Gate(progress, 3) }
func BeamGate(progress float64) float64   { return Gate(progress, 2) }
func FrameGate(progress float64) float64  { return Gate(progress, 2) }
func FooterGate(progress float64) float64 { return GateFrom(progress, 0.5, 3) }

// SlotDelay is slot i's start offset in progress units.
func (d *Director) SlotDelay(i int) float64 {
	if d.RevealTime <= 0 {
		return 0
	}
	return float64(i) * float64(d.Stagger) / float64(d.RevealTime)
}

// SlotProgress is slot i's own reveal progress. Zero means not drawn.
func (d *Director) SlotProgress(progress float64, i int) float64 {
	return GateFrom(progress, d.SlotDelay(i), 4)
}

// LoopProgress maps preview elapsed time to progress: the reveal plays over
// RevealTime, holds for LoopPause, then starts again.
func (d *Director) LoopProgress(elapsed time.Duration) float64 {
	loop := d.RevealTime + d.LoopPause
	if loop <= 0 {
		return 1
	}
	e := elapsed % loop
	if e < 0 {
		e += loop
	}
	return math.Min(1, float64(e)/float64(d.RevealTime))
}

func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
