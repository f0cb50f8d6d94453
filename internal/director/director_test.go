package director

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/scrim2gif/internal/config"
)

func TestSlotGate(t *testing.T) {
	d := NewDirector(config.Default())

	// Slot 0 opens immediately
	if d.SlotProgress(0, 0) != 0 {
		t.Error("slot 0 should be hidden at progress 0")
	}
	if d.SlotProgress(0.001, 0) <= 0 {
		t.Error("slot 0 should be visible right after progress 0")
	}

	// Slot 24 opens at 24*120/4500 = 0.64
	open := 24.0 * 120 / 4500
	if math.Abs(d.SlotDelay(24)-open) > 1e-12 {
		t.Fatalf("expected delay %f, got %f", open, d.SlotDelay(24))
	}
	if d.SlotProgress(open, 24) != 0 {
		t.Error("slot 24 should still be hidden exactly at its delay")
	}
	if d.SlotProgress(open+0.001, 24) <= 0 {
		t.Error("slot 24 should be visible right after its delay")
	}
	if d.SlotProgress(0.63, 24) != 0 {
		t.Error("slot 24 should be hidden at 0.63")
	}
	if d.SlotProgress(1, 24) != 1 {
		t.Errorf("slot 24 should be fully revealed at 1, got %f", d.SlotProgress(1, 24))
	}
}

func TestNewDirectorDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"nil", nil},
		{"zero", &config.Config{}},
		{"negative", &config.Config{RevealTime: -time.Second, Stagger: -time.Second, LoopPause: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirector(tt.cfg)
			if d.RevealTime != 4500*time.Millisecond || d.Stagger != 120*time.Millisecond || d.LoopPause != 2500*time.Millisecond {
				t.Errorf("unexpected timings %+v", d)
			}
			if d.SlotDelay(1) <= 0 {
				t.Error("slots should be staggered")
			}
		})
	}

	d := NewDirector(&config.Config{Stagger: 50 * time.Millisecond, LoopPause: time.Second})
	if d.Stagger != 50*time.Millisecond || d.LoopPause != time.Second {
		t.Errorf("configured timings ignored: %+v", d)
	}
}

func TestLayerGates(t *testing.T) {
	tests := []struct {
		name     string
		gate     func(float64) float64
		progress float64
		want     float64
	}{
		{"header start", HeaderGate, 0, 0},
		{"header quarter", HeaderGate, 0.25, 1},
		{"header eighth", HeaderGate, 0.125, 0.5},
		{"beam half", BeamGate, 0.25, 0.5},
		{"frame full", FrameGate, 0.5, 1},
		{"dust third", DustGate, 1.0 / 3, 1},
		{"footer closed", FooterGate, 0.5, 0},
		{"footer mid", FooterGate, 0.6, 0.3},
		{"footer open", FooterGate, 0.9, 1},
		{"star negative", StarGate, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gate(tt.progress); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestLoopProgress(t *testing.T) {
	d := NewDirector(config.Default())

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{2250 * time.Millisecond, 0.5},
		{4500 * time.Millisecond, 1},
		{6999 * time.Millisecond, 1},
		{7000 * time.Millisecond, 0},
		{9250 * time.Millisecond, 0.5},
	}
	for _, tt := range tests {
		if got := d.LoopProgress(tt.elapsed); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("elapsed %s: expected %f, got %f", tt.elapsed, tt.want, got)
		}
	}
}

func TestPlan(t *testing.T) {
	p := NewPlan(12, 4*time.Second, 2*time.Second)

	anim, hold := 0, 0
	for _, c := range p.Cues {
		if c.Hold {
			hold++
			if c.Progress != 1 {
				t.Errorf("hold cue %d at progress %f", c.Index, c.Progress)
			}
		} else {
			anim++
		}
	}
	if anim != 49 || hold != 24 {
		t.Fatalf("expected 49 animation + 24 hold cues, got %d + %d", anim, hold)
	}

	if p.DelayUnits() != 8 {
		t.Errorf("expected delay 8, got %d", p.DelayUnits())
	}

	// Full reveal is reached at frame 48*0.8 = 38.4, so frame 39 is already at 1
	if p.Cues[38].Progress >= 1 || p.Cues[39].Progress != 1 {
		t.Errorf("headroom mismatch: %f %f", p.Cues[38].Progress, p.Cues[39].Progress)
	}

	// Time is synthesized from the frame index and keeps advancing into the hold
	if math.Abs(p.Cues[12].TimeMs-1000) > 1e-9 {
		t.Errorf("expected frame 12 at 1000ms, got %f", p.Cues[12].TimeMs)
	}
	firstHold := p.Cues[49]
	if !firstHold.Hold || math.Abs(firstHold.TimeMs-4000) > 1e-9 {
		t.Errorf("unexpected first hold cue %+v", firstHold)
	}
	last := p.Cues[len(p.Cues)-1]
	if math.Abs(last.TimeMs-71*1000.0/12) > 1e-9 {
		t.Errorf("unexpected last cue time %f", last.TimeMs)
	}
}

func TestPlanPercent(t *testing.T) {
	p := NewPlan(12, 4*time.Second, 2*time.Second)

	prev := -1
	for _, c := range p.Cues {
		pct := p.Percent(c)
		if pct < prev {
			t.Fatalf("progress went backwards at cue %d: %d < %d", c.Index, pct, prev)
		}
		if !c.Hold && pct > 80 {
			t.Fatalf("animation cue %d above 80%%: %d", c.Index, pct)
		}
		if c.Hold && (pct < 80 || pct > 95) {
			t.Fatalf("hold cue %d outside 80-95: %d", c.Index, pct)
		}
		prev = pct
	}
	if p.Percent(p.Cues[0]) != 0 {
		t.Errorf("expected 0 at first cue")
	}
}
