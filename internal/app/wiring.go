package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/learnify-backend/internal/adapter/memory"
	"github.com/heartmarshall/learnify-backend/internal/adapter/postgres"
	pgsession "github.com/heartmarshall/learnify-backend/internal/adapter/postgres/session"
	"github.com/heartmarshall/learnify-backend/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/learnify-backend/internal/adapter/provider/stub"
	"github.com/heartmarshall/learnify-backend/internal/adapter/redis"
	"github.com/heartmarshall/learnify-backend/internal/catalog"
	"github.com/heartmarshall/learnify-backend/internal/config"
	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
	"github.com/heartmarshall/learnify-backend/internal/session"
)

// generator is everything the services need from a content provider.
type generator interface {
	GenerateOutline(ctx context.Context, req provider.OutlineRequest) ([]domain.Module, error)
	GenerateLesson(ctx context.Context, req provider.LessonRequest) (string, error)
	Chat(ctx context.Context, system string, history []provider.ChatTurn, prompt string) (string, error)
}

// newSlotStore opens the configured session backend. The returned func
// releases its connections.
func newSlotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.SlotStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		if cfg.Database.AutoMigrate {
			n, err := postgres.Migrate(ctx, cfg.Database.DSN)
			if err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied", slog.Int("count", n))
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			slog.Int("max_conns", int(cfg.Database.MaxConns)),
		)
		return pgsession.New(pool, postgres.NewTxManager(pool), cfg.Session.TTL), pool.Close, nil

	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis connected", slog.String("addr", cfg.Redis.Addr))
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				logger.Error("redis close", slog.String("error", err.Error()))
			}
		}
		return redis.NewSlotStore(rdb, cfg.Redis.KeyPrefix, cfg.Session.TTL), closeFn, nil

	default:
		return memory.NewSlotStore(cfg.Session.TTL), func() {}, nil
	}
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	c, err := catalog.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Path, err)
	}
	return c, nil
}

func newGenerator(cfg config.LLMConfig, logger *slog.Logger) generator {
	if cfg.Provider == config.ProviderAnthropic {
		return anthropic.NewGenerator(anthropic.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, logger)
	}
	logger.Warn("using the offline stub generator")
	return stub.NewGenerator()
}
