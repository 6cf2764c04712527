// Package main запускает HTTP-сервер панели счетов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/invoice-dashboard/internal/auth"
	"github.com/mmeshcher/invoice-dashboard/internal/config"
	"github.com/mmeshcher/invoice-dashboard/internal/handler"
	"github.com/mmeshcher/invoice-dashboard/internal/middleware"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/revalidate"
	"github.com/mmeshcher/invoice-dashboard/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	cache := revalidate.NewPathCache()
	revalidators := revalidate.Chain{cache}
	if cfg.RevalidateURL != "" {
		revalidators = append(revalidators, revalidate.NewClient(cfg.RevalidateURL, logger))
	}

	provider := auth.NewCredentialsProvider(repo)
	svc := service.NewService(repo, provider, revalidators, service.WithLogger(logger))
	defer svc.Close()

	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
	}
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		sugar.Fatalw("session key initialization error", "error", err.Error())
	}
	h := handler.NewHandler(svc, logger, authMiddleware, cache)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting invoice dashboard server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
