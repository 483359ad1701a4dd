package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stephbot/config"
	"stephbot/internal/application"
	"stephbot/internal/dialogue"
	"stephbot/internal/infra/chat"
	"stephbot/internal/infra/elevenlabs"
	"stephbot/internal/infra/ntnl"
	"stephbot/internal/infra/openai"
	"stephbot/internal/infra/speaker"
)

func main() {
	// Optional .env for local development; config still wins.
	godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	answerer := ntnl.NewClient(cfg.NTNL.BaseURL, ntnl.HistoryMode(cfg.NTNL.HistoryMode))
	voiceOut := createSpeaker(cfg.Voice, logger)

	orchestrator := application.NewOrchestrator(
		dialogue.NewEngine(),
		answerer,
		voiceOut,
		cfg.NTNL.HistoryPairs,
		logger,
	)

	var stt application.SpeechToText = &application.NoopSTT{}
	if cfg.OpenAI.APIKey != "" {
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	}

	logger.Info("starting stephbot",
		"input_source", cfg.Input.Source,
		"voice_enabled", cfg.Voice.Enabled,
	)

	switch cfg.Input.Source {
	case "http":
		gateway := chat.NewGateway(cfg.Server.Addr, cfg.Server.AuthToken, orchestrator, stt, logger)
		if err := gateway.Start(ctx); err != nil {
			logger.Error("starting gateway", "error", err)
			os.Exit(1)
		}
		<-ctx.Done()
		if err := gateway.Stop(); err != nil {
			logger.Error("stopping gateway", "error", err)
		}
	case "microphone", "file":
		listener := application.NewListener(createSource(cfg.Input, logger), stt, orchestrator, logger)
		if err := listener.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("listener error", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown input source", "source", cfg.Input.Source)
		os.Exit(1)
	}
}

func createSource(cfg config.Input, logger *slog.Logger) application.UtteranceSource {
	if cfg.Source == "microphone" {
		return chat.NewMicrophoneSource(cfg.SampleRate, logger)
	}
	return chat.NewFileSource(cfg.FileDir)
}

func createSpeaker(cfg config.Voice, logger *slog.Logger) application.Speaker {
	if !cfg.Enabled {
		return &application.NoopSpeaker{}
	}

	settings := elevenlabs.VoiceSettings{
		Stability:       cfg.Stability,
		SimilarityBoost: cfg.SimilarityBoost,
	}
	primary := speaker.NewProxySpeaker(cfg.ProxyURL, cfg.VoiceID, cfg.ModelID, settings, speaker.NewFileSink(cfg.AudioDir))
	fallback := speaker.NewLocalSynth(cfg.FallbackCommand)

	return application.NewFallbackSpeaker(primary, fallback, logger)
}

func setupLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
