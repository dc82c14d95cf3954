package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"interviewd/internal/archive"
	"interviewd/internal/config"
	"interviewd/internal/engine"
	"interviewd/internal/logging"
	"interviewd/internal/metrics"
	"interviewd/internal/queue"
	"interviewd/internal/server"
	"interviewd/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, warnings, err := config.Load(os.Getenv(config.EnvPrefix + "CONFIG"))
	if err != nil {
		logging.Init("info", "json")
		fatalLog := logging.WithComponent("main")
		fatalLog.Fatal().Err(err).Msg("config load failed")
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	log := logging.WithComponent("main")
	for _, warning := range warnings {
		log.Warn().Msg(warning)
	}

	m := metrics.New()

	store, err := archive.New(cfg.ArchiveDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("archive init failed")
	}
	defer func() { _ = store.Close() }()

	audioQueue := queue.New(queue.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Enabled: cfg.KafkaEnabled && len(cfg.KafkaBrokers) > 0,
	})
	defer func() { _ = audioQueue.Close() }()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := audioQueue.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("audio intake queue unreachable")
	}
	pingCancel()

	gateway := engine.NewClient(cfg.EngineURL, cfg.ParsedEngineTimeout(), m)
	registry := session.NewRegistry()
	hub := server.NewHub()
	orch := session.NewOrchestrator(registry, gateway, hub, audioQueue, store, m)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(hub, orch, store),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	log.Info().Str("addr", cfg.ListenAddr).Str("engine", cfg.EngineURL).Msg("interviewd listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}
