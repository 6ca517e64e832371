// Scene-Nav - turn-by-turn walking guidance over a navigation mesh
// Poses arrive over HTTP, instructions go out as speech and websocket events
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/A-smalluser/Scene-Nav/internal/config"
	"github.com/A-smalluser/Scene-Nav/internal/log"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
	"github.com/A-smalluser/Scene-Nav/pkg/pathquery"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
	"github.com/A-smalluser/Scene-Nav/pkg/speech"
	"github.com/A-smalluser/Scene-Nav/pkg/tts"
	"github.com/A-smalluser/Scene-Nav/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (json, yaml or toml)")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.InitWithFile(cfg.LogLevel, cfg.LogFile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log.L()); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scene-nav stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	poses := pose.NewStore()

	server := web.NewServer(cfg.Web.Addr, poses, logger)
	server.StatusInterval = cfg.Web.StatusInterval

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}
	if provider != nil {
		defer provider.Close()
	}
	speaker := speech.New(provider, server.AudioOutput(), logger)
	go speaker.Run(ctx)

	var paths pathquery.Service
	if cfg.Path.URL != "" {
		paths = pathquery.NewClient(cfg.Path.URL, cfg.Path.Timeout, logger)
	} else {
		logger.Warn("no path service configured, every request will fail")
	}

	engine := navigation.New(cfg.Navigation(), paths,
		navigation.WithAnnouncer(speaker),
		navigation.WithRenderer(server.Markers()),
		navigation.WithInstructionSink(server.RecordInstruction),
		navigation.WithLogger(logger),
	)
	server.Attach(engine)
	server.StartAsync(ctx)

	logger.Info("scene-nav ready",
		"addr", cfg.Web.Addr,
		"path_service", cfg.Path.URL,
		"speech", provider != nil,
	)
	err = engine.Run(ctx, poses)

	stats := speaker.Stats()
	logger.Info("speech summary",
		"submitted", stats.Submitted,
		"spoken", stats.Spoken,
		"superseded", stats.Superseded,
		"failed", stats.Failed,
	)
	return err
}

// newProvider returns the websocket TTS provider, or nil when no credentials
// are configured; guidance then runs display-only. A fallback voice is chained
// behind the primary one.
func newProvider(cfg *config.Config, logger *slog.Logger) (tts.Provider, error) {
	if !cfg.HasTTSCredentials() {
		logger.Warn("speech disabled, no TTS credentials")
		return nil, nil
	}
	voices := []string{cfg.TTS.Voice}
	if cfg.TTS.FallbackVoice != "" && cfg.TTS.FallbackVoice != cfg.TTS.Voice {
		voices = append(voices, cfg.TTS.FallbackVoice)
	}

	providers := make([]tts.Provider, 0, len(voices))
	for _, voice := range voices {
		p, err := tts.NewWebSocket(
			tts.WithAppID(cfg.TTS.AppID),
			tts.WithAPIKey(cfg.TTS.APIKey),
			tts.WithAPISecret(cfg.TTS.APISecret),
			tts.WithBaseURL(cfg.TTS.BaseURL),
			tts.WithVoice(voice),
			tts.WithTimeout(cfg.TTS.Timeout),
			tts.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("tts voice %s: %w", voice, err)
		}
		providers = append(providers, p)
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	chain, err := tts.NewChainWithLogger(logger, providers...)
	if err != nil {
		return nil, err
	}
	return chain, nil
}
