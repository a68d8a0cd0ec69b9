package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgillard/planlog/internal/api"
	"github.com/rgillard/planlog/internal/config"
	"github.com/rgillard/planlog/internal/db"
	"github.com/rgillard/planlog/internal/importer"
	"github.com/rgillard/planlog/internal/middleware"
	"github.com/rgillard/planlog/internal/repository"
	"github.com/rgillard/planlog/internal/scheduler"

	"github.com/rs/cors"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	profileRepo := repository.NewProfileRepository(conn.Pool)
	eventRepo := repository.NewEventRepository(conn.Pool)
	eventLogRepo := repository.NewEventLogRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)

	// Wire services and transport
	sched := scheduler.NewService(profileRepo, eventRepo, eventLogRepo)
	importService := importer.NewService(sched, importLogRepo)
	handler := api.NewHandler(sched, profileRepo)
	router := handler.Routes(importer.NewHTTPHandler(importService))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	rootHandler := middleware.LoggingMiddleware(
		middleware.DataLoaderMiddleware(profileRepo)(router),
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      corsHandler.Handler(rootHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting planlog server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
