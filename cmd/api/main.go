package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/swaggo/swag"

	"pet-health-log/internal/adapters/storage/postgres"
	"pet-health-log/internal/apidocs"
	"pet-health-log/internal/config"
	"pet-health-log/internal/platform/logger"
	"pet-health-log/internal/router"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Error("config", map[string]any{"error": err})
		return err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})

	docs, err := apidocs.New()
	if err != nil {
		log.Error("build api docs", map[string]any{"error": err})
		return err
	}
	if err := apidocs.Register(swag.Name, docs); err != nil {
		log.Error("register api docs", map[string]any{"error": err})
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = postgres.Open(cfg.Database.DSN)
		if err != nil {
			log.Error("open database", map[string]any{"error": err})
			return err
		}
		defer db.Close()

		if cfg.Database.EnsureSchema {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				log.Error("ensure schema", map[string]any{"error": err})
				return err
			}
		}
		log.Info("storage", map[string]any{"driver": "postgres"})
	} else {
		log.Warn("storage", map[string]any{"driver": "memory", "note": "data is lost on restart"})
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			DB:          db,
			Logger:      log,
			APIKey:      cfg.Auth.APIKey,
			CORSOrigins: cfg.CORS.Origins,
			Docs:        docs,
			RateLimit: router.RateLimit{
				Disabled: cfg.RateLimit.Disabled,
				Requests: cfg.RateLimit.Requests,
				Window:   cfg.RateLimit.Window,
			},
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "api_key": cfg.Auth.APIKey != ""})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error("server error", map[string]any{"error": err})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", map[string]any{"error": err})
		return err
	}
	return nil
}
