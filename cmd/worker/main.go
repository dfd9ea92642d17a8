package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/config"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

// Sweeps stale draft sessions so abandoned reconciliation forms do not pin
// quota selections forever.
func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found, using system environment")
	}
	config.Load()
	logger.Initialize()
	log := logger.Get()

	if config.AppConfig.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	drafts := services.NewDraftService(db, nil, nil)
	ttl := time.Duration(config.AppConfig.DraftTTLMinutes) * time.Minute

	log.Info("Draft sweeper started", zap.Duration("ttl", ttl))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down sweeper")
		cancel()
	}()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	sweep := func() {
		closed, err := drafts.SweepStale(ttl)
		if err != nil {
			log.Error("Sweep failed", zap.Error(err))
			return
		}
		if closed > 0 {
			log.Info("Closed stale drafts", zap.Int64("count", closed))
		}
	}

	// Run once on start, then on every tick.
	sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
