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
	"golang.org/x/sync/errgroup"

	"gastos/internal/backend"
	"gastos/internal/backend/memory"
	"gastos/internal/backend/rest"
	"gastos/internal/config"
	apphttp "gastos/internal/http"
	applog "gastos/internal/log"
	"gastos/internal/session"
)

func main() {
	// .env is optional; production sets real environment variables.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sessions, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Failed to open session store", "error", err, "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer sessions.Close()

	var svc backend.Service
	switch cfg.Backend {
	case "memory":
		password := os.Getenv("MEMORY_BACKEND_PASSWORD")
		if password == "" {
			password = "gastos"
		}
		svc = memory.New("rafael@delivery.com", password)
		logger.Info("Initialized in-memory backend", "backend", cfg.Backend)
	default:
		svc = rest.NewClient(cfg.APIBaseURL)
		logger.Info("Initialized REST backend", "backend", cfg.Backend, "base_url", cfg.APIBaseURL)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, sessions, cfg.SecureCookie)
	srv.ReadTimeout = cfg.ReadTimeout
	srv.WriteTimeout = cfg.WriteTimeout
	srv.IdleTimeout = cfg.IdleTimeout
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		logger.Info("Starting gastos server", "port", cfg.Port, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			return ctx.Err()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
