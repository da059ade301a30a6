package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "hindtrade-backend/internal/application/auth"
	"hindtrade-backend/internal/config"
	"hindtrade-backend/internal/infrastructure/database"
	"hindtrade-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	setupLogger(cfg)

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	ctx := context.Background()
	if db != nil {
		pinger := &database.Pinger{DB: db}
		if err := pinger.Ping(); err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("postgres connected")
		if cfg.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				log.Fatal().Err(err).Msg("auto-migrate failed")
			}
			log.Info().Msg("schema migrated")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set; only health routes are mounted")
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Msg("redis connected")

	events := &authsvc.SessionEvents{Rdb: rdb}
	sub, err := events.Subscribe(ctx, func(ev authsvc.SessionEvent) {
		log.Info().Str("type", ev.Type).Str("account_id", ev.AccountID).Time("at", ev.At).Msg("session event")
	})
	if err != nil {
		log.Error().Err(err).Msg("session events: subscribe failed")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if sub != nil {
			_ = sub.Close()
		}
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msgf("server running at http://localhost:%s (health: /health/json)", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	_ = rdb.Close()
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
