package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/taskvault/taskvault/config"
	"github.com/taskvault/taskvault/pkg/helpers"
)

// Seeds one demo account with a couple of tasks for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@taskvault.local"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(email)) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	tasks := []struct {
		description string
		completed   bool
	}{
		{"Read the onboarding doc", true},
		{"Set up the local stack", false},
		{"Write the first task", false},
	}
	for _, t := range tasks {
		if _, err := db.Exec(`
			INSERT INTO tasks (owner_id, description, completed)
			VALUES ($1, $2, $3)
		`, id, t.description, t.completed); err != nil {
			log.Fatalf("failed to seed task: %v", err)
		}
	}
	fmt.Printf("seeded %d tasks\n", len(tasks))
}
