package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"frontdesk/internal/platform/config"
)

// Open connects to the application database. Foreign keys are enforced and a
// busy timeout is set so concurrent writers back off instead of failing with
// SQLITE_BUSY immediately.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	busyMillis := int(cfg.BusyTimeout / time.Millisecond)
	if busyMillis <= 0 {
		busyMillis = 5000
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", cfg.Path, busyMillis)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
