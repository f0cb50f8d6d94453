package system

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Приоритеты H.264 энкодеров: VideoToolbox (macOS), NVENC (NVIDIA), затем libx264.
var hardwareEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

const SoftwareEncoder = "libx264"

var (
	probeOnce   sync.Once
	probeResult string
)

// GetBestH264Encoder опрашивает ffmpeg один раз и возвращает лучший
// доступный энкодер. Без ffmpeg возвращается libx264.
func GetBestH264Encoder() string {
	probeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			probeResult = SoftwareEncoder
			return
		}
		probeResult = pickEncoder(string(out))
	})
	return probeResult
}

func pickEncoder(listing string) string {
	for _, name := range hardwareEncoders {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return SoftwareEncoder
}

// DefaultQuality подбирает качество под энкодер: битрейт Q*100кбит/с для
// VideoToolbox, CQ для NVENC, CRF для x264.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

// FFmpegAvailable сообщает, есть ли ffmpeg в PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}
