// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations embeds the goose migrations of the sync agent's local
// SQLite cache and of the document store's PostgreSQL database.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed client/*.sql
var clientMigrations embed.FS

//go:embed server/*.sql
var serverMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var mu sync.Mutex

// MigrateClient applies the local cache migrations to a SQLite database.
func MigrateClient(db *sql.DB) error {
	return migrate(db, clientMigrations, "client", "sqlite3")
}

// MigrateServer applies the document store migrations to a PostgreSQL
// database opened with the pgx driver.
func MigrateServer(db *sql.DB) error {
	return migrate(db, serverMigrations, "server", "pgx")
}

// ClientVersion returns the current goose version of a local cache.
func ClientVersion(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("migration error: db is nil")
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(clientMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("migration error reading version: %w", err)
	}
	return version, nil
}

func migrate(db *sql.DB, fsys embed.FS, dir, dialect string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
