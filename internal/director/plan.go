package director

import (
	"math"
	"time"
)

// Cue is one export frame: what progress and synthetic time to render.
type Cue struct {
	Index    int // position in the output
	Frame    int // index within its phase
	Progress float64
	TimeMs   float64
	Hold     bool
}

// Plan is the offline frame schedule for an animated export. Time comes
// from the frame index, never from the wall clock, so exports reproduce.
type Plan struct {
	FPS        int
	AnimFrames int // fps*duration; AnimFrames+1 animation cues are emitted
	HoldFrames int
	Cues       []Cue
}

// Headroom: animation reaches full reveal at 80% of the animation frames,
// the rest render at progress 1 before the hold starts.
const Headroom = 0.8

// NewPlan builds the cue list for fps, animation duration and hold.
func NewPlan(fps int, duration, hold time.Duration) Plan {
	if fps <= 0 {
		fps = 12
	}
	anim := int(math.Round(duration.Seconds() * float64(fps)))
	holdFrames := int(math.Round(hold.Seconds() * float64(fps)))
	step := 1000 / float64(fps)

	p := Plan{FPS: fps, AnimFrames: anim, HoldFrames: holdFrames}
	p.Cues = make([]Cue, 0, anim+1+holdFrames)

	for i := 0; i <= anim; i++ {
		progress := 1.0
		if anim > 0 {
			progress = math.Min(1, float64(i)/(float64(anim)*Headroom))
		}
		p.Cues = append(p.Cues, Cue{
			Index:    len(p.Cues),
			Frame:    i,
			Progress: progress,
			TimeMs:   float64(i) * step,
		})
	}

	for i := 0; i < holdFrames; i++ {
		p.Cues = append(p.Cues, Cue{
			Index:    len(p.Cues),
			Frame:    i,
			Progress: 1,
			TimeMs:   float64(anim+i) * step,
			Hold:     true,
		})
	}

	return p
}

// FrameDelayMs is round(1000/fps).
func (p Plan) FrameDelayMs() int {
	return int(math.Round(1000 / float64(p.FPS)))
}

// DelayUnits converts the frame delay to the GIF centisecond unit:
// round(round(1000/fps)/10). The double rounding is kept on purpose so
// output timing matches what existing players were tuned against.
func (p Plan) DelayUnits() int {
	return int(math.Round(float64(p.FrameDelayMs()) / 10))
}

// Percent maps a cue to the export progress scale: animation frames span
// 0-80, hold frames 80-95. Finalization (95-100) is reported by the caller.
func (p Plan) Percent(c Cue) int {
	total := p.AnimFrames + p.HoldFrames
	if !c.Hold {
		if total == 0 {
			return 0
		}
		return int(math.Round(float64(c.Frame) / float64(total) * 80))
	}
	if p.HoldFrames == 0 {
		return 95
	}
	return 80 + int(math.Round(float64(c.Frame)/float64(p.HoldFrames)*15))
}
