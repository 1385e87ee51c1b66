package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

var documentColumns = []string{"id", "business_id", "fields", "created_at"}

const mergeDocumentSuffix = `ON CONFLICT (collection, id) DO UPDATE
SET fields = documents.fields || EXCLUDED.fields, updated_at = now()
WHERE documents.business_id = EXCLUDED.business_id
RETURNING id, business_id, fields, created_at`

// documentRepository is the PostgreSQL-backed implementation of
// [DocumentRepository]. All collections share the "documents" table keyed by
// (collection, id).
type documentRepository struct {
	db      *DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
	now     func() time.Time
}

// NewDocumentRepository constructs a [DocumentRepository] backed by db.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	logger.Debug().Msg("creating document repository")
	return &documentRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the documents of businessID ordered by (created_at, id).
func (r *documentRepository) List(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"collection": collection.String(), "business_id": businessID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*documentRepository.List").
			Str("collection", collection.String()).
			Str("business_id", businessID).
			Msg("failed to query documents")
		return nil, r.wrap(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 50)
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			log.Err(err).Str("func", "*documentRepository.List").Msg("failed to scan document")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "*documentRepository.List").Msg("error occurred during rows iteration")
		return nil, r.wrap(ErrScanningRows, rowsErr)
	}

	return records, nil
}

// Insert stores a new document. A document with the same collection and id
// yields [ErrDocumentExists].
func (r *documentRepository) Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}

	query, args, err := r.builder.
		Insert("documents").
		Columns("collection", "id", "business_id", "fields", "created_at").
		Values(collection.String(), record.ID, record.BusinessID, record.Fields, record.CreatedAt.UTC()).
		Suffix("RETURNING id, business_id, fields, created_at").
		ToSql()
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	created, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).
			Str("func", "*documentRepository.Insert").
			Str("collection", collection.String()).
			Str("id", record.ID).
			Msg("failed to insert document")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Record{}, fmt.Errorf("%w: %s/%s", ErrDocumentExists, collection, record.ID)
		}
		return models.Record{}, r.wrap(ErrExecutingStatement, err)
	}

	return created, nil
}

// Merge writes record.Fields over the stored document of the same business,
// creating it when absent. A document owned by another business yields
// [ErrDocumentNotFound].
func (r *documentRepository) Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}

	query, args, err := r.builder.
		Insert("documents").
		Columns("collection", "id", "business_id", "fields", "created_at").
		Values(collection.String(), record.ID, record.BusinessID, record.Fields, record.CreatedAt.UTC()).
		Suffix(mergeDocumentSuffix).
		ToSql()
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	merged, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	switch {
	case err == nil:
		return merged, nil
	case errors.Is(err, sql.ErrNoRows):
		// конфликт с документом другого бизнеса
		return models.Record{}, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, record.ID)
	default:
		log.Err(err).
			Str("func", "*documentRepository.Merge").
			Str("collection", collection.String()).
			Str("id", record.ID).
			Msg("failed to merge document")
		return models.Record{}, r.wrap(ErrExecutingStatement, err)
	}
}

// Delete removes a document of businessID. Nothing deleted yields
// [ErrDocumentNotFound].
func (r *documentRepository) Delete(ctx context.Context, collection models.Collection, businessID, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete("documents").
		Where(sq.Eq{"collection": collection.String(), "id": id, "business_id": businessID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*documentRepository.Delete").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to delete document")
		return r.wrap(ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.wrap(ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
	}

	return nil
}

// wrap attaches kind to err and marks transient failures with
// [ErrRetryable].
func (r *documentRepository) wrap(kind, err error) error {
	if r.db.retryable(err) {
		return fmt.Errorf("%w: %w: %w", ErrRetryable, kind, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func scanDocument(row rowScanner) (models.Record, error) {
	var record models.Record
	if err := row.Scan(&record.ID, &record.BusinessID, &record.Fields, &record.CreatedAt); err != nil {
		return models.Record{}, err
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}
