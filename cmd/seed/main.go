// Package main seeds the user directory with demo rows for local
// development. Safe to re-run; rows get fresh ids each time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/storage"
)

var firstNames = []string{
	"Alex", "Jordan", "Sam", "Casey", "Riley", "Morgan", "Taylor",
	"Avery", "Quinn", "Jamie", "Drew", "Cameron", "Reese", "Skyler",
}

var lastNames = []string{
	"Johnson", "Williams", "Brown", "Davis", "Miller", "Wilson",
	"Moore", "Anderson", "Thomas", "Jackson", "White", "Harris",
}

var loginTypes = []string{"email", "google", "facebook"}
var statuses = []string{"active", "active", "active", "suspended"}
var roles = []string{"user", "user", "user", "tipster"}

func main() {
	count := flag.Int("count", 100, "Number of demo users to insert")
	migrate := flag.Bool("migrate", true, "Run migrations before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.DirectoryEnabled() {
		log.Fatal("No Postgres host configured; nothing to seed")
	}

	if *migrate {
		if err := storage.RunMigrations(storage.URL(&cfg.Postgres)); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	db, err := storage.NewPostgresDB(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	repo := storage.NewDirectoryRepository(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	for i := 0; i < *count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		user := &models.DirectoryUser{
			Name:          fmt.Sprintf("%s %s", first, last),
			Email:         fmt.Sprintf("%s.%s%d@example.com", first, last, rng.Intn(10000)),
			Role:          roles[rng.Intn(len(roles))],
			Status:        statuses[rng.Intn(len(statuses))],
			JoinedDate:    time.Now().AddDate(0, 0, -rng.Intn(730)),
			TwoFactorAuth: rng.Intn(2) == 0,
			LoginType:     loginTypes[rng.Intn(len(loginTypes))],
		}

		if err := repo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to insert user %d: %v", i, err)
		}
	}

	log.Printf("Seeded %d directory users", *count)
}
