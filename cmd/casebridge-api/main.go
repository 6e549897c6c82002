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

	"github.com/hive-corporation/casebridge/internal/adapter/appliance"
	"github.com/hive-corporation/casebridge/internal/adapter/handler"
	"github.com/hive-corporation/casebridge/internal/config"
	"github.com/hive-corporation/casebridge/internal/core/actions"
	"github.com/hive-corporation/casebridge/internal/core/poll"
)

const deviceCacheSize = 256

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found (this is fine if tokens are configured elsewhere)")
	}

	configPath := os.Getenv("CASEBRIDGE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	client := appliance.NewClient(
		cfg.Appliance.BaseURL,
		cfg.Appliance.PublicToken,
		cfg.Appliance.PrivateToken,
		cfg.Appliance.SkipTLSVerify,
	)

	devices, err := appliance.NewDeviceCache(client.DeviceSummary, deviceCacheSize)
	if err != nil {
		log.Fatalf("❌ Error creating device cache: %v", err)
	}

	poll.InitMetrics()
	registry := actions.DefaultRegistry(client, devices)
	restHandler := handler.NewRestHandler(registry)

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: restHandler.Router(),
	}

	go func() {
		log.Printf("🚀 casebridge API listening on %s\n", cfg.API.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
