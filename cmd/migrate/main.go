package main

import (
	"log"

	"lola-discovery-be/internal/config"
	"lola-discovery-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate for sessions and answers (%s)...", cfg.Database.Driver)
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Migration complete")
}
