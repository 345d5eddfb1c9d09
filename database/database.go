package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite file at url and brings its schema up to date.
func Open(url string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", url)
	if err != nil {
		return
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	// a single writer keeps sqlite from returning SQLITE_BUSY under load
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return
}
