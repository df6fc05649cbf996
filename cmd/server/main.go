package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/provider"
	"github.com/commercekit/razorpay-provider/internal/razorpay"
	"github.com/commercekit/razorpay-provider/internal/server"
	"github.com/commercekit/razorpay-provider/internal/shared/config"
	"github.com/commercekit/razorpay-provider/internal/shared/logger"
	"github.com/commercekit/razorpay-provider/internal/shared/metrics"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	m := metrics.New("razorpay_provider")

	client := razorpay.NewClient(razorpay.ClientConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Endpoint:  cfg.Razorpay.Endpoint,
		Timeout:   cfg.Razorpay.Timeout,
		Metrics:   m,
	}, zlog)

	rzp, err := provider.NewRazorpayProvider(client, provider.Options{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		MerchantName:  cfg.Razorpay.MerchantName,
	}, zlog)
	if err != nil {
		log.Fatalf("Failed to initialize razorpay provider: %v", err)
	}

	registry := provider.NewRegistry()
	registry.Register(rzp)

	active, err := registry.Get(provider.ProviderName)
	if err != nil {
		log.Fatalf("Failed to resolve payment provider: %v", err)
	}

	handler := server.NewHandler(active, zlog)
	webhooks := server.NewWebhookHandler(active, m, zlog)
	router := server.NewRouter(handler, webhooks, m, zlog, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("starting server", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}
