package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/ivlev/scrim2gif/internal/system"
)

// Encoder opens a video stream that accepts frames one at a time.
type Encoder interface {
	Start(ctx context.Context, path string, width, height, fps int) (Stream, error)
}

// Stream receives frames in order. Close finishes the file; Abort stops the
// encoder and leaves whatever was written.
type Stream interface {
	WriteFrame(img image.Image) error
	Close() error
	Abort()
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	Binary  string
	Codec   string
	Quality int
}

// NewFFmpegEncoder uses codec (empty: probe the best H.264 encoder) and
// quality (0: the codec's default).
func NewFFmpegEncoder(codec string, quality int) *FFmpegEncoder {
	if codec == "" {
		codec = system.GetBestH264Encoder()
	}
	if quality <= 0 {
		quality = system.DefaultQuality(codec)
	}
	return &FFmpegEncoder{Binary: "ffmpeg", Codec: codec, Quality: quality}
}

func (e *FFmpegEncoder) Start(ctx context.Context, path string, width, height, fps int) (Stream, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid stream %dx%d@%d", width, height, fps)
	}
	// yuv420p needs even dimensions
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("video size %dx%d must be even", width, height)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &ffmpegStream{width: width, height: height, cancel: cancel}
	s.cmd = exec.CommandContext(ctx, e.binary(), e.buildFFmpegArgs(width, height, fps, path)...)
	s.cmd.Stdout = &s.log
	s.cmd.Stderr = &s.log

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) buildFFmpegArgs(width, height, fps int, path string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", e.Codec,
	}

	// Качество в зависимости от энкодера
	switch e.Codec {
	case "h264_videotoolbox":
		bitrate := e.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium")
	}

	args = append(args, "-movflags", "+faststart", path)
	return args
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
	cancel context.CancelFunc
	width  int
	height int
	frames int
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", s.frames, b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

func (s *ffmpegStream) Close() error {
	defer s.cancel()
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.log.String())
	}
	return nil
}

func (s *ffmpegStream) Abort() {
	s.stdin.Close()
	s.cancel()
	s.cmd.Wait()
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
