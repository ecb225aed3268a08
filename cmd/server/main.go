package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/asheworth/portfolio-analyzer/internal/api"
	"github.com/asheworth/portfolio-analyzer/internal/config"
	"github.com/asheworth/portfolio-analyzer/internal/database"
	"github.com/asheworth/portfolio-analyzer/internal/repository"
	"github.com/asheworth/portfolio-analyzer/internal/service"
	"github.com/asheworth/portfolio-analyzer/internal/snapshot"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and run migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	holdingsLoader := snapshot.NewLoader(cfg.Holdings.Path)

	// Create services
	systemService := service.NewSystemService(db)
	analysisService := service.NewAnalysisService(
		transactionRepo,
		priceRepo,
		mappingRepo,
		holdingsLoader,
	)

	// Optional scheduled re-analysis
	if cfg.Analysis.Schedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Analysis.Schedule, func() {
			if _, err := analysisService.Run(context.Background()); err != nil {
				log.Printf("Scheduled analysis failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Invalid analysis schedule %q: %v", cfg.Analysis.Schedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("Scheduled analysis enabled: %s", cfg.Analysis.Schedule)
	}

	// Create router
	router := api.NewRouter(systemService, analysisService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
