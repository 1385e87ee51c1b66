package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

// ReplaceCollection deletes every row of the collection table and inserts
// records inside one transaction. Records with a repeated id overwrite the
// earlier ones.
func (s *SQLiteStore) ReplaceCollection(ctx context.Context, collection models.Collection, records []models.Record) error {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}
	if err := validateRecords(ctx, s.validator, records...); err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("refusing to replace collection with invalid records")
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	deleteQuery, deleteArgs, err := s.builder.Delete(collection.String()).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("failed to clear collection")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	for i, record := range records {
		query, args, err := s.upsertRecordQuery(collection, normalizeRecord(record))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "SQLiteStore.ReplaceCollection").
				Str("collection", collection.String()).
				Str("id", record.ID).
				Int("index", i).
				Msg("failed to insert record")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	log.Debug().
		Str("func", "SQLiteStore.ReplaceCollection").
		Str("collection", collection.String()).
		Int("records", len(records)).
		Msg("collection replaced")

	return nil
}

// ReadCollection returns the cached records ordered by (created_at, id).
func (s *SQLiteStore) ReadCollection(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return nil, err
	}

	builder := s.builder.
		Select(collectionColumns...).
		From(collection.String()).
		OrderBy("created_at", "id")
	if businessID != "" {
		builder = builder.Where(sq.Eq{"business_id": businessID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.ReadCollection").
			Str("collection", collection.String()).
			Str("business_id", businessID).
			Msg("failed to query collection")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 50)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			log.Err(err).
				Str("func", "SQLiteStore.ReadCollection").
				Str("collection", collection.String()).
				Msg("failed to scan record row")
			return nil, err
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "SQLiteStore.ReadCollection").
			Str("collection", collection.String()).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

// UpsertRecord writes an optimistic create or update into the cache.
func (s *SQLiteStore) UpsertRecord(ctx context.Context, collection models.Collection, record models.Record) error {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}
	if err := validateRecords(ctx, s.validator, record); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	selectQuery, selectArgs, err := s.builder.
		Select(collectionColumns...).
		From(collection.String()).
		Where(sq.Eq{"id": record.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	merged := normalizeRecord(record)
	cached, err := scanRecord(tx.QueryRowContext(ctx, selectQuery, selectArgs...))
	switch {
	case err == nil:
		merged = mergeRecord(cached, record)
	case errors.Is(err, sql.ErrNoRows):
	default:
		log.Err(err).
			Str("func", "SQLiteStore.UpsertRecord").
			Str("collection", collection.String()).
			Str("id", record.ID).
			Msg("failed to read cached record")
		return err
	}

	query, args, err := s.upsertRecordQuery(collection, merged)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.UpsertRecord").
			Str("collection", collection.String()).
			Str("id", record.ID).
			Bool("retryable", s.retryable(err)).
			Msg("failed to upsert record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, collection models.Collection, id string) error {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}

	query, args, err := s.builder.Delete(collection.String()).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.DeleteRecord").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to delete record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, collection models.Collection, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return 0, err
	}

	query, args, err := s.builder.
		Delete(collection.String()).
		Where(sq.Gt{"created_at": 0}).
		Where(sq.Lt{"created_at": cutoff.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "SQLiteStore.DeleteOlderThan").
			Str("collection", collection.String()).
			Time("cutoff", cutoff).
			Msg("failed to delete expired records")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return deleted, nil
}

func (s *SQLiteStore) upsertRecordQuery(collection models.Collection, record models.Record) (string, []any, error) {
	query, args, err := s.builder.
		Insert(collection.String()).
		Columns(collectionColumns...).
		Values(record.ID, record.BusinessID, record.Fields, toUnixMilli(record.CreatedAt)).
		Suffix("ON CONFLICT(id) DO UPDATE SET business_id = excluded.business_id, fields = excluded.fields, created_at = excluded.created_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record    models.Record
		createdAt int64
	)

	if err := row.Scan(&record.ID, &record.BusinessID, &record.Fields, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, err
		}
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	record.CreatedAt = fromUnixMilli(createdAt)

	return normalizeRecord(record), nil
}
