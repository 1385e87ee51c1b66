// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateServer_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	_ = mock // не используем напрямую, goose сам будет ходить в DB

	err = MigrateServer(db)
	if err == nil {
		t.Fatal("expected error from MigrateServer, got nil")
	}

	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	for name, fn := range map[string]func(*sql.DB) error{
		"client": MigrateClient,
		"server": MigrateServer,
	} {
		err := fn(db)
		if err == nil {
			t.Fatalf("%s: expected error when db is nil, got nil", name)
		}

		if !strings.Contains(err.Error(), "db is nil") {
			t.Errorf("%s: expected 'db is nil' error, got: %v", name, err)
		}
	}
}

func TestMigrateClient_CreatesSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "offline.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateClient(db))

	for _, table := range []string{"sales", "products", "employees", "clients", "sync_queue", "metadata", "dead_letters"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	version, err := ClientVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
}

func TestMigrateClient_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "offline.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateClient(db))
	require.NoError(t, MigrateClient(db))
}
