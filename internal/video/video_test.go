package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		codec   string
		quality int
		want    string
	}{
		{"libx264", 23, "-crf 23 -preset medium"},
		{"h264_nvenc", 28, "-cq 28"},
		{"h264_videotoolbox", 75, "-b:v 7500k"},
	}
	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			e := &FFmpegEncoder{Codec: tt.codec, Quality: tt.quality}
			args := strings.Join(e.buildFFmpegArgs(640, 854, 12, "out.mp4"), " ")

			for _, part := range []string{
				"-f rawvideo -pixel_format rgba",
				"-video_size 640x854",
				"-framerate 12",
				"-c:v " + tt.codec,
				tt.want,
			} {
				if !strings.Contains(args, part) {
					t.Errorf("args %q missing %q", args, part)
				}
			}
			if !strings.HasSuffix(args, "out.mp4") {
				t.Errorf("output path not last: %q", args)
			}
		})
	}
}

func TestNewFFmpegEncoderDefaults(t *testing.T) {
	e := NewFFmpegEncoder("libx264", 0)
	if e.Quality != 23 || e.binary() != "ffmpeg" {
		t.Errorf("unexpected defaults %+v", e)
	}
}

func TestStartRejectsBadSize(t *testing.T) {
	e := &FFmpegEncoder{Codec: "libx264", Quality: 23}
	for _, size := range [][3]int{{0, 10, 12}, {10, 10, 0}, {641, 854, 12}} {
		if _, err := e.Start(context.Background(), "x.mp4", size[0], size[1], size[2]); err == nil {
			t.Errorf("expected error for %v", size)
		}
	}
}

func TestWriteRawRGBA(t *testing.T) {
	// offset sub-image must be repacked from the origin
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(2, 2, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Fatalf("expected 16 bytes, got %d", buf.Len())
	}
	if !bytes.Equal(buf.Bytes()[:4], []byte{9, 8, 7, 255}) {
		t.Errorf("unexpected first pixel %v", buf.Bytes()[:4])
	}
}
