package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/epgjanitor/epgjanitor/internal/api"
	"github.com/epgjanitor/epgjanitor/internal/config"
	"github.com/epgjanitor/epgjanitor/internal/database"
	"github.com/epgjanitor/epgjanitor/internal/dispatcharr"
	"github.com/epgjanitor/epgjanitor/internal/history"
	"github.com/epgjanitor/epgjanitor/internal/janitor"
	"github.com/epgjanitor/epgjanitor/internal/logger"
	"github.com/epgjanitor/epgjanitor/internal/matcher"
	"github.com/epgjanitor/epgjanitor/internal/scheduler"
	"github.com/epgjanitor/epgjanitor/internal/scheduler/tasks"
)

func main() {
	// A .env file is optional; environment wins over it either way.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting EPG Janitor")

	for _, problem := range cfg.Problems() {
		log.Error().Msg(problem)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg("configuration is invalid, refusing to start")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	client, err := dispatcharr.NewClient(dispatcharr.ClientConfig{
		URL:           cfg.Dispatcharr.URL,
		Username:      cfg.Dispatcharr.Username,
		Password:      cfg.Dispatcharr.Password,
		Timeout:       cfg.Dispatcharr.Timeout,
		SkipSSLVerify: cfg.Dispatcharr.SkipSSLVerify,
		Logger:        &log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Dispatcharr client")
	}

	if err := client.TestConnection(context.Background()); err != nil {
		// The server may simply not be up yet; runs will retry.
		log.Warn().Err(err).Msg("Dispatcharr is not reachable")
	}

	scorer := matcher.NewScorer(nil, janitor.TagSetFromConfig(cfg.Janitor))
	janitorService := janitor.NewService(client, cfg, scorer, log.Logger)
	historyService := history.NewService(db, log.Logger)
	janitorService.SetRecorder(historyService)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterHealTask(sched, janitorService, &cfg.Janitor); err != nil {
		log.Fatal().Err(err).Msg("failed to register heal task")
	}
	if err := tasks.RegisterHistoryCleanupTask(sched, historyService); err != nil {
		log.Fatal().Err(err).Msg("failed to register history cleanup task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	server := api.NewServer(cfg, client, janitorService, historyService, sched, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("goodbye")
}
