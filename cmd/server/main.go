// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tankard-game/tankard/internal/auth"
	"github.com/tankard-game/tankard/internal/config"
	"github.com/tankard-game/tankard/internal/database"
	"github.com/tankard-game/tankard/internal/game"
	"github.com/tankard-game/tankard/internal/handlers"
	"github.com/tankard-game/tankard/internal/history"
	"github.com/tankard-game/tankard/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	signer, err := auth.NewSigner(cfg.TokenExpire)
	if err != nil {
		logger.Fatalf("init token signer: %v", err)
	}

	var recorder game.ActionRecorder
	if cfg.RedisAddr != "" {
		rec, err := history.Connect(cfg.RedisAddr, cfg.RedisDB, cfg.HistoryQueue, logger)
		if err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer rec.Close()
		recorder = rec
		logger.WithField("queue", cfg.HistoryQueue).Info("action history enabled")
	}

	registry := game.NewRegistry(game.ParseDisconnectPolicy(cfg.DisconnectPolicy), recorder, logger)

	if url := cfg.PostgresURL(); url != "" {
		store, err := database.Connect(context.Background(), url, logger)
		if err != nil {
			logger.Fatalf("connect database: %v", err)
		}
		defer store.Close()
		registry.OnGameEnd = store.OnGameEnd
		logger.Info("game results persistence enabled")
	}

	srv := handlers.NewServer(registry, signer, logger)
	handler := middleware.LogMiddleware(logger)(srv.Routes())

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
