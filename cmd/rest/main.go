package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lola-discovery-be/internal/bootstrap"
	"lola-discovery-be/internal/config"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/server"
	"lola-discovery-be/internal/tracer"
	"lola-discovery-be/pkg/database"
	"lola-discovery-be/pkg/flow"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Load the flow; a malformed document must stop the process
	graph, err := flow.LoadFile(cfg.Flow.ConfigPath)
	if err != nil {
		log.Fatalf("Unable to load flow config: %v", err)
	}
	sysLogger.Info("MAIN", "Flow loaded", map[string]interface{}{
		"path":      cfg.Flow.ConfigPath,
		"nodes":     graph.Len(),
		"questions": graph.TotalQuestions(),
	})

	// 4. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.Driver == database.DriverSQLite {
		if err := database.AutoMigrate(gormDB); err != nil {
			log.Fatalf("Unable to migrate sqlite database: %v", err)
		}
	}

	// 5. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, graph, sysLogger)
	defer container.Close()

	// 6. Start Background Services
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		sysLogger.Error("MAIN", "Consumer service failed to start", map[string]interface{}{"error": err.Error()})
	}
	if cfg.Session.CleanupSchedule != "" {
		if err := container.CleanupScheduler.Schedule(cfg.Session.CleanupSchedule); err != nil {
			log.Fatalf("Invalid SESSION_CLEANUP_SCHEDULE %q: %v", cfg.Session.CleanupSchedule, err)
		}
		container.CleanupScheduler.Start()
		defer container.CleanupScheduler.Stop()
	}

	// 7. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		sysLogger.Info("MAIN", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 8. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
