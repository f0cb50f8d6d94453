package system

import (
	"image"
	"testing"
)

func TestFramePool(t *testing.T) {
	p := NewFramePool()
	rect := image.Rect(0, 0, 16, 9)

	a := p.Get(rect)
	if a.Rect != rect {
		t.Fatalf("unexpected frame bounds %v", a.Rect)
	}
	p.Put(a)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3))) // unknown size is dropped

	b := p.Get(rect)
	if b.Rect != rect {
		t.Errorf("pooled frame has bounds %v", b.Rect)
	}
	if c := p.Get(image.Rect(0, 0, 4, 4)); c.Rect.Dx() != 4 {
		t.Errorf("second size not served: %v", c.Rect)
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing string
		want    string
	}{
		{" V....D h264_nvenc NVIDIA NVENC H.264 encoder\n V....D libx264", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264 libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, want %s", tt.listing, got, tt.want)
		}
	}
}

func TestDefaultQuality(t *testing.T) {
	if DefaultQuality("h264_videotoolbox") != 75 || DefaultQuality("h264_nvenc") != 28 || DefaultQuality("libx264") != 23 {
		t.Error("unexpected default quality")
	}
}

func TestCollect(t *testing.T) {
	s, err := Collect()
	if err != nil {
		t.Logf("partial stats: %v", err)
	}
	if s.LogicalCPUs <= 0 || s.Goroutines <= 0 || s.HeapAlloc == 0 {
		t.Errorf("runtime stats missing: %+v", s)
	}
	if MB(3<<20) != "3.0 MB" {
		t.Errorf("unexpected MB format %q", MB(3<<20))
	}
}
