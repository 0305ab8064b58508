// Command server runs the editor web app, the write path of the catalog.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civicat/internal/catalog/schema"
	"civicat/internal/catalog/store"
	"civicat/internal/editor"
	"civicat/internal/platform/config"
	"civicat/internal/platform/httpserver"
	"civicat/internal/platform/logger"
	"civicat/internal/platform/metrics"
	"civicat/internal/platform/middleware"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	validator, err := schema.NewValidator()
	if err != nil {
		log.Error("schema compilation failed", "error", err)
		os.Exit(1)
	}

	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)
	m := metrics.New()

	handler, err := editor.New(st, validator, log)
	if err != nil {
		log.Error("editor setup failed", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLog(log, m, "editor"))
	handler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting editor", "addr", cfg.Addr, "data", cfg.DataDir)

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
