package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rpattn/productfilter/internal/api"
	"github.com/rpattn/productfilter/internal/config"
	"github.com/rpattn/productfilter/internal/filtering"
	"github.com/rpattn/productfilter/internal/ingestion"
	"github.com/rpattn/productfilter/internal/logger"
	"github.com/rpattn/productfilter/internal/middleware"
	"github.com/rpattn/productfilter/internal/schema/registry"
)

func main() {
	configPath := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("info", nil).Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, nil)

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the catalog snapshot once
	source, err := openCatalog(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	defer source.Close()

	reg := registry.NewFromCatalog(source.catalog)
	engineOpts := []filtering.Option{filtering.WithLogger(log)}
	if cfg.Filter.StrictOperators {
		engineOpts = append(engineOpts, filtering.WithStrictOperators())
	}
	engine := filtering.NewEngine(reg, engineOpts...)

	apiHandler := api.NewHTTPHandler(source.catalog, reg, engine, source.reader, log)
	previewHandler := ingestion.NewHTTPHandler(ingestion.NewService(nil, ingestion.Options{Enumerated: cfg.Catalog.Enumerated}, log))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.DataLoaderMiddleware(source.reader)(apiHandler))
	mux.Handle("/api/catalog/preview", previewHandler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(log)(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Success("Serving %d products from %s on %s", len(source.catalog.Products()), source.catalog.Source, cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Failure(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Failure(err, "Server forced to shutdown")
		return
	}

	log.Info("Server exited")
}
