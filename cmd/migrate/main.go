// Package main provides a CLI tool for running database migrations.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/storage"
)

func main() {
	action := flag.String("action", "up", "Migration action: up, down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.DirectoryEnabled() {
		log.Fatal("No Postgres host configured; nothing to migrate")
	}

	databaseURL := storage.URL(&cfg.Postgres)

	switch *action {
	case "up":
		log.Println("Running migrations...")
		if err := storage.RunMigrations(databaseURL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")

	case "down":
		log.Println("Rolling back migration...")
		if err := storage.RollbackMigrations(databaseURL); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Migration rolled back successfully")

	default:
		log.Fatal(fmt.Sprintf("Unknown action: %s", *action))
	}
}
