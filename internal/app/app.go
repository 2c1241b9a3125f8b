package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/learnify-backend/internal/auth"
	"github.com/heartmarshall/learnify-backend/internal/config"
	"github.com/heartmarshall/learnify-backend/internal/service/learning"
	"github.com/heartmarshall/learnify-backend/internal/service/tutor"
	"github.com/heartmarshall/learnify-backend/internal/session"
	"github.com/heartmarshall/learnify-backend/internal/transport/middleware"
	"github.com/heartmarshall/learnify-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// session store, generators and HTTP server, and blocks until ctx is
// cancelled or the server fails. Shutdown is graceful.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("session_backend", cfg.Session.Backend),
		slog.String("llm_provider", cfg.LLM.Provider),
	)

	slots, closeSlots, err := newSlotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSlots()

	courses, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", slog.Int("courses", courses.Len()))

	gen := newGenerator(cfg.LLM, logger)
	store := session.New(logger, slots)

	manager := learning.NewManager(logger, store, courses, gen, gen, learning.Options{
		GenerationTimeout: cfg.LLM.Timeout,
		IdleTimeout:       cfg.Session.IdleTimeout,
	})
	tutorSvc := tutor.NewService(logger, gen)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go manager.RunSweeper(bgCtx, cfg.Session.SweepInterval)
	if exp, ok := slots.(expirer); ok {
		go runJanitor(bgCtx, exp, cfg.Session.SweepInterval, logger)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()
	limit := limiter.Limit(cfg.RateLimit.RequestsPerMinute)

	router := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(store, cfg.Session.Backend, BuildVersion()),
		Session: rest.NewSessionHandler(tokens, logger),
		Auth:    rest.NewAuthHandler(manager, logger),
		Course:  rest.NewCourseHandler(manager, courses, logger),
		Tutor:   rest.NewTutorHandler(tutorSvc, logger),
	}, rest.Middlewares{
		Global: middleware.Chain(
			middleware.Recovery(logger),
			middleware.RequestID,
			middleware.Logger(logger),
			middleware.CORS(cfg.CORS),
		),
		Public:    limit,
		Protected: middleware.Chain(middleware.Session(tokens, logger), limit),
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("server stopped", slog.Int("open_sessions", manager.Len()))
	return nil
}

// expirer is implemented by slot stores that need expired records purged
// explicitly. Redis expires keys by itself.
type expirer interface {
	DeleteExpired(ctx context.Context) (int, error)
}

func runJanitor(ctx context.Context, exp expirer, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := exp.DeleteExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("expired session cleanup failed", slog.String("error", err.Error()))
				}
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", slog.Int("slots", n))
			}
		}
	}
}
