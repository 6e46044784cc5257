// +build ignore

// seed_data.go loads the demo stations through the repository.
// Run with: go run scripts/seed_data.go
package main

import (
	"context"
	"log"
	"os"

	"github.com/geowise/station-healthcheck/internal/seed"
	"github.com/geowise/station-healthcheck/internal/storage"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "postgres://postgres@localhost:5432/healthcheck?sslmode=disable"
	}

	db, err := storage.NewPostgresDB(dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	log.Println("Connected, seeding stations...")

	repo := storage.NewPostgresRepository(db)
	for _, s := range seed.Stations() {
		if err := repo.SaveTable(context.Background(), s.ID, s.Table); err != nil {
			log.Fatalf("seed %s: %v", s.ID, err)
		}
		log.Printf("Seeded %s (%d rows)", s.ID, len(s.Table.Rows))
	}
	log.Println("Done")
}
