package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"readtrack/internal/config"
)

// migrationsDir holds the goose SQL files that shape the books catalog schema
const migrationsDir = "./migrations"

// Runs goose migrations against the books catalog. Commands: up (default),
// down, status, version, create <name>.
func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.LoadClickHouseFromEnv()
	if err != nil {
		log.Fatalf("Catalog database configuration error: %v", err)
	}

	db, err := sql.Open("clickhouse", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Catalog database unreachable: %v", err)
	}
	log.Printf("Connected to catalog database at %s:%d", cfg.Host, cfg.Port)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := goose.SetDialect("clickhouse"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	switch command {
	case "up":
		if err := goose.Up(db, migrationsDir); err != nil {
			log.Fatalf("Catalog migration failed: %v", err)
		}
		log.Println("Books catalog schema is up to date")
	case "down":
		if err := goose.Down(db, migrationsDir); err != nil {
			log.Fatalf("Catalog rollback failed: %v", err)
		}
		log.Println("Rolled back one catalog migration")
	case "status":
		if err := goose.Status(db, migrationsDir); err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
	case "version":
		version, err := goose.GetDBVersion(db)
		if err != nil {
			log.Fatalf("Failed to read catalog schema version: %v", err)
		}
		log.Printf("Books catalog schema version: %d", version)
	case "create":
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate create <name>")
		}
		name := os.Args[2]
		if err := goose.Create(db, migrationsDir, name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		log.Printf("Created catalog migration: %s", name)
	default:
		log.Fatalf("Unknown command %q (expected up, down, status, version or create)", command)
	}
}
