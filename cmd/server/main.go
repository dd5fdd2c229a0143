package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shhiivvaam/ecommerce-backend/config"
	"github.com/shhiivvaam/ecommerce-backend/internal/app"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/db"
	"github.com/shhiivvaam/ecommerce-backend/internal/metrics"
	"github.com/shhiivvaam/ecommerce-backend/internal/scheduler"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment/midtrans"
	"github.com/shhiivvaam/ecommerce-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format != "json",
	})

	logger.Info("Starting e-commerce backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	opts := app.Options{}
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		opts.SettingsCache = service.NewRedisSettingsCache(redis.GetClient(), cfg.Settings.CacheTTL)
	}

	if cfg.Payment.Midtrans.ServerKey != "" {
		client, err := midtrans.NewClient(midtrans.Config{
			ServerKey:   cfg.Payment.Midtrans.ServerKey,
			Environment: cfg.Payment.Midtrans.Environment,
		})
		if err != nil {
			logger.Fatal("Failed to configure payment provider", err)
		}
		opts.Gateway = client
		opts.Verifier = client
		logger.Info("Midtrans payment enabled", map[string]interface{}{
			"environment": cfg.Payment.Midtrans.Environment,
			"currency":    midtrans.Currency,
		})
	} else {
		logger.Warn("MIDTRANS_SERVER_KEY not set, online payment is disabled")
	}

	metrics.Register()
	application := app.New(db.GetDB(), cfg, opts)

	var expiry *scheduler.OrderExpiryScheduler
	if cfg.Scheduler.Enabled {
		expiry = scheduler.NewOrderExpiryScheduler(
			application.Services.Orders,
			cfg.Scheduler.ExpirySpec,
			cfg.Scheduler.PendingOrderTTL,
		)
		if err := expiry.Start(); err != nil {
			logger.Fatal("Failed to start order expiry scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           application.Router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if expiry != nil {
		expiry.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
