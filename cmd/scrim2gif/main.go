package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/engine"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/server"
	"github.com/ivlev/scrim2gif/internal/system"
	"github.com/ivlev/scrim2gif/internal/video"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPtr := flag.String("config", "", "Путь к YAML конфигу (поверх значений по умолчанию)")
	inputPtr := flag.String("input", "", "Путь к YAML списку (по умолчанию: самый свежий файл в input/lists/)")
	outputPtr := flag.String("output", "", "Путь к результату (если пусто, генерируется по имени списка в output/)")
	formatPtr := flag.String("format", "", "Формат: gif, png, mp4")
	servePtr := flag.Bool("serve", false, "Запустить HTTP сервер вместо разового рендера")
	listenPtr := flag.String("listen", "", "Адрес HTTP сервера (например, :8090)")
	gifWidthPtr := flag.Int("gif-width", 0, "Ширина GIF (высота по пропорциям холста)")
	fpsPtr := flag.Int("fps", 0, "FPS экспорта")
	qualityPtr := flag.Int("quality", 0, "Качество MP4 (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	shareURLPtr := flag.String("share-url", "", "Ссылка для QR-бейджа в шапке")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	logLevelPtr := flag.String("log-level", "", "Уровень логов: debug, info, warn, error")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] .env не загружен: %v\n", err)
	}
	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Ошибка конфига: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	cfg.BuildVersion = version

	// флаги, заданные явно, важнее конфига и окружения
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputPath = *outputPtr
		case "format":
			cfg.Format = strings.ToLower(*formatPtr)
		case "listen":
			cfg.ListenAddr = *listenPtr
		case "gif-width":
			cfg.GIFWidth = *gifWidthPtr
			cfg.GIFHeight = cfg.GIFHeightFor(*gifWidthPtr)
		case "fps":
			cfg.FPS = *fpsPtr
		case "quality":
			cfg.FFmpegQuality = *qualityPtr
		case "share-url":
			cfg.ShareURL = *shareURLPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		}
	})

	setupLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("[-] Некорректная конфигурация")
	}

	// Создаем нужные директории, если их нет
	for _, d := range []string{cfg.ScenesDir, cfg.OutputDir} {
		os.MkdirAll(d, 0755)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fonts := renderer.LoadFonts(cfg)
	enc := videoEncoder(cfg, *qualityPtr)
	rec := metrics.NewRecorder()

	if *servePtr {
		srv := server.New(cfg, server.Options{Fonts: fonts, Recorder: rec, Encoder: enc})
		if err := srv.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("[-] Ошибка сервера")
		}
		return
	}

	project := engine.NewProject(cfg, fonts, enc, rec)
	res, err := project.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("[-] Ошибка проекта")
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", res.OutputPath)
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// videoEncoder returns nil when ffmpeg is missing; mp4 export is then
// unavailable.
func videoEncoder(cfg *config.Config, qualityFlag int) video.Encoder {
	if !system.FFmpegAvailable() {
		log.Info().Msg("[*] ffmpeg не найден, экспорт MP4 недоступен")
		return nil
	}
	name := cfg.VideoEncoder
	if name == "" {
		name = system.GetBestH264Encoder()
	}
	if name != system.SoftwareEncoder {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", name)
	}
	quality := cfg.FFmpegQuality
	if qualityFlag == 0 && quality == config.Default().FFmpegQuality {
		quality = system.DefaultQuality(name)
	}
	return video.NewFFmpegEncoder(name, quality)
}
