package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/validators"
	"github.com/MKhiriev/go-biz-sync/migrations"
)

// SQLiteStore is the SQLite engine of the local store. Every collection is a
// table with indexes on business_id and created_at; the write queue,
// metadata and dead letters live in their own tables of the same file.
type SQLiteStore struct {
	*DB
	builder   sq.StatementBuilderType
	validator validators.Validator
	logger    *logger.Logger
	now       func() time.Time
}

// NewSQLiteStore opens the SQLite file at path. The schema is created by
// Initialize.
func NewSQLiteStore(ctx context.Context, path string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := NewConnectSQLite(ctx, path, log)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		DB:        db,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
		validator: validators.NewSyncValidator(),
		logger:    log,
		now:       time.Now,
	}, nil
}

// Initialize applies pending migrations. Migrations only ever add tables,
// so upgrading keeps the data of existing stores.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if err := migrations.MigrateClient(s.DB.DB); err != nil {
		s.logger.Err(err).Str("func", "SQLiteStore.Initialize").Msg("failed to migrate local store")
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
