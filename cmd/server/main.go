package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labreserve/lab-reservation-backend/internal/app"
	"github.com/labreserve/lab-reservation-backend/internal/config"
	"github.com/labreserve/lab-reservation-backend/internal/cron"
	"github.com/labreserve/lab-reservation-backend/internal/db"
	"github.com/labreserve/lab-reservation-backend/internal/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		Logger:       zlog,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		AMQPURL:      cfg.AMQPURL,
		MaxAdvance:   time.Duration(cfg.MaxAdvanceDays) * 24 * time.Hour,
	})
	if err != nil {
		zlog.Fatal("failed to init application", zap.Error(err))
	}
	defer container.Close()

	// Load active reservations into the availability index before serving.
	if err := container.Reservations.WarmIndex(ctx); err != nil {
		zlog.Fatal("failed to warm availability index", zap.Error(err))
	}

	// Background expiration sweep
	sweeper, err := cron.StartSweeper(container.Reservations, cfg.SweepInterval, zlog)
	if err != nil {
		zlog.Fatal("failed to start sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		zlog.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zlog.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited gracefully")
}
