package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketpet/pocketpet/internal/config"
	"github.com/pocketpet/pocketpet/internal/logger"
	"github.com/pocketpet/pocketpet/internal/queue"
	"github.com/pocketpet/pocketpet/internal/sim"
	"github.com/pocketpet/pocketpet/internal/storage"
	"github.com/pocketpet/pocketpet/pkg/world"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting pet bot",
		"environment", cfg.Environment,
		"tick_interval", cfg.TickInterval.String())

	client, err := storage.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create store client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error("Error closing store client", "error", err)
		}
	}()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startupCancel()
	if err := client.WaitForConnection(startupCtx); err != nil {
		log.Error("Failed to connect to store", "error", err)
		os.Exit(1)
	}

	game := world.NewGame(client.Redis(), log, world.Options{
		Debug:        cfg.Debug,
		TickInterval: cfg.TickInterval,
	})
	events := queue.NewEventQueue(client.Redis())

	scheduler := sim.NewScheduler(game, log)
	dispatcher := sim.NewDispatcher(game, events, &sim.LogMessenger{Logger: log}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 2)
	go func() { done <- scheduler.Run(ctx) }()
	go func() { done <- dispatcher.Run(ctx) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Bot started")
	<-quit
	log.Info("Shutdown signal received")

	cancel()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			log.Error("Loop error during shutdown", "error", err)
		}
	}
	log.Info("Bot exited")
}
