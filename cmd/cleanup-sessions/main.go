// Command cleanup-sessions removes expired session slots from the postgres
// session backend. It is intended to be invoked by an external cron job when
// the server runs with several replicas.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/learnify-backend/internal/adapter/postgres"
	"github.com/heartmarshall/learnify-backend/internal/adapter/postgres/session"
	"github.com/heartmarshall/learnify-backend/internal/app"
	"github.com/heartmarshall/learnify-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := session.New(pool, postgres.NewTxManager(pool), cfg.Session.TTL)

	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		logger.Error("session cleanup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("session cleanup completed", slog.Int("deleted", deleted))
}
