package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"frontdesk/internal/pkg/logger"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/database"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	migrationsDir := flag.String("migrations", "migrations", "path to migrations directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrations table")
	}

	entries, err := os.ReadDir(*migrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read migrations directory")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		var exists int
		err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, name).Scan(&exists)
		if err != nil {
			log.Fatal().Err(err).Str("migration", name).Msg("failed to check migration state")
		}
		if exists > 0 {
			continue
		}

		contents, err := os.ReadFile(filepath.Join(*migrationsDir, name))
		if err != nil {
			log.Fatal().Err(err).Str("migration", name).Msg("failed to read migration")
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to begin transaction")
		}
		if _, err := tx.Exec(string(contents)); err != nil {
			tx.Rollback()
			log.Fatal().Err(err).Str("migration", name).Msg("migration failed")
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			name, time.Now().Unix()); err != nil {
			tx.Rollback()
			log.Fatal().Err(err).Str("migration", name).Msg("failed to record migration")
		}
		if err := tx.Commit(); err != nil {
			log.Fatal().Err(err).Str("migration", name).Msg("failed to commit migration")
		}

		log.Info().Str("migration", name).Msg("applied")
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(files)).Msg("migrations complete")
}
