// Command viewer runs the read-only site over converted data.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"

	"civicat/internal/catalog/store"
	"civicat/internal/platform/config"
	"civicat/internal/platform/httpserver"
	"civicat/internal/platform/logger"
	"civicat/internal/platform/middleware"
	"civicat/internal/viewer"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)

	// The live viewer serves from the root; BasePath only matters for the
	// static export.
	handler, err := viewer.New(st, viewer.Config{
		SiteTitle:  cfg.SiteTitle,
		Disclaimer: cfg.Disclaimer,
	}, log)
	if err != nil {
		log.Error("viewer setup failed", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLog(log, nil, "viewer"))
	handler.Register(r)

	srv := httpserver.New(cfg.ViewerAddr, r)

	log.Info("starting viewer", "addr", cfg.ViewerAddr, "data", cfg.DataDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
