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
	"stephbot/internal/infra/elevenlabs"
	"stephbot/internal/proxy"
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

	// The credential never leaves this process. Without it the proxy
	// still serves, answering every speech request with a
	// configuration error.
	var synth proxy.Synthesizer
	if cfg.Proxy.APIKey != "" {
		if cfg.Proxy.BaseURL != "" {
			synth = elevenlabs.NewClientWithURL(cfg.Proxy.APIKey, cfg.Proxy.BaseURL)
		} else {
			synth = elevenlabs.NewClient(cfg.Proxy.APIKey)
		}
	} else {
		logger.Warn("no provider API key configured, speech requests will fail")
	}

	server := proxy.NewServer(cfg.Proxy.Addr, synth, logger)

	logger.Info("starting speech proxy", "addr", cfg.Proxy.Addr)
	if err := server.Start(ctx); err != nil {
		logger.Error("starting proxy", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	if err := server.Stop(); err != nil {
		logger.Error("stopping proxy", "error", err)
	}
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
