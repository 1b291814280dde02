package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/solana-dashboard/internal/app"
	"github.com/rovshanmuradov/solana-dashboard/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start dashboard: %v", err)
	}

	if err := application.Run(rootCtx); err != nil {
		log.Fatalf("Dashboard exited with error: %v", err)
	}
}
