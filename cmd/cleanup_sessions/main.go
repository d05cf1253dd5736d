// Command cleanup_sessions runs one stale-session sweep and exits. It is meant
// for external schedulers (cron, Kubernetes CronJob) when the in-process
// scheduler is disabled.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"lola-discovery-be/internal/config"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/internal/service"
	"lola-discovery-be/pkg/database"
	"lola-discovery-be/pkg/flow"
)

func main() {
	cfg := config.Load()
	minutes := flag.Int("minutes", cfg.Session.StaleMinutes, "remove in-progress sessions idle for longer than this")
	flag.Parse()

	graph, err := flow.LoadFile(cfg.Flow.ConfigPath)
	if err != nil {
		log.Fatalf("Unable to load flow config: %v", err)
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	sessionService := service.NewSessionService(
		graph,
		unitofwork.NewRepositoryFactory(db),
		nil,
		nil,
		nil,
		logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction()),
		service.SessionOptions{},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := sessionService.CleanupStale(ctx, *minutes)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	log.Printf("Removed %d stale sessions (threshold %d minutes)", removed, *minutes)
}
