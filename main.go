package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"workflow-sequence/api/pkg/config"
	"workflow-sequence/api/pkg/db"
	"workflow-sequence/api/pkg/httpx"
	"workflow-sequence/api/services/nodes"
	"workflow-sequence/api/services/storage"
	"workflow-sequence/api/services/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	slog.SetDefault(slog.New(logHandler))

	dbCfg := db.DefaultConfig(cfg.DatabaseURL)
	if cfg.DBMaxConns > 0 {
		dbCfg.MaxConns = cfg.DBMaxConns
		dbCfg.MinConns = min(dbCfg.MinConns, cfg.DBMaxConns)
	}
	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		return
	}

	pgStore, err := storage.NewInstance(pool)
	if err != nil {
		slog.Error("Failed to create store instance", "error", err)
		return
	}

	// setup router
	mainRouter := mux.NewRouter()
	mainRouter.Use(httpx.RequestIDMiddleware)
	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()

	workflowService, err := workflow.NewService(pgStore)
	if err != nil {
		slog.Error("Failed to create workflow service", "error", err)
		return
	}
	workflowService.LoadRoutes(apiRouter)

	nodeService, err := nodes.NewService(pgStore)
	if err != nil {
		slog.Error("Failed to create node service", "error", err)
		return
	}
	nodeService.LoadRoutes(apiRouter)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", httpx.RequestIDHeader}),
		handlers.ExposedHeaders([]string{httpx.RequestIDHeader}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(corsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", cfg.HTTPAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
}
