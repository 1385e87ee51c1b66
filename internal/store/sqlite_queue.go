package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

// Enqueue appends op to the queue with a zero retry counter. The operation
// is durable once Enqueue returns.
func (s *SQLiteStore) Enqueue(ctx context.Context, op models.SyncOperation) error {
	log := logger.FromContext(ctx)

	op.Retries = 0
	if err := validateOperation(ctx, s.validator, op); err != nil {
		return err
	}

	payload, err := json.Marshal(normalizeRecord(op.Payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	_, err = s.DB.ExecContext(ctx, enqueueOperation,
		op.ID,
		op.Kind,
		op.Collection,
		op.BusinessID,
		string(payload),
		toUnixMilli(op.CreatedAt),
		op.MaxRetries,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrOperationExists, op.ID)
		}
		log.Err(err).
			Str("func", "SQLiteStore.Enqueue").
			Str("op_id", op.ID).
			Str("kind", string(op.Kind)).
			Str("collection", op.Collection.String()).
			Bool("retryable", s.retryable(err)).
			Msg("failed to enqueue operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// PeekAll returns every queued operation in insertion order.
func (s *SQLiteStore) PeekAll(ctx context.Context) ([]models.SyncOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := s.DB.QueryContext(ctx, peekAllOperations)
	if err != nil {
		log.Err(err).Str("func", "SQLiteStore.PeekAll").Msg("failed to query sync queue")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.SyncOperation, 0, 16)
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			log.Err(err).Str("func", "SQLiteStore.PeekAll").Msg("failed to scan operation row")
			return nil, err
		}
		ops = append(ops, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "SQLiteStore.PeekAll").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return ops, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	result, err := s.DB.ExecContext(ctx, removeOperation, id)
	if err != nil {
		log.Err(err).Str("func", "SQLiteStore.Remove").Str("op_id", id).Msg("failed to remove operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	return nil
}

// IncrementRetry bumps the retry counter of the operation and stores
// reason as its last error. An operation reaching its threshold is moved
// to dead_letters in the same transaction.
func (s *SQLiteStore) IncrementRetry(ctx context.Context, id, reason string) (bool, error) {
	log := logger.FromContext(ctx)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to begin transaction")
		return false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	op, err := scanOperation(tx.QueryRowContext(ctx, getOperation, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
		}
		log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to read operation")
		return false, err
	}

	op.Retries++
	op.LastError = reason
	dropped := op.Exhausted()

	if dropped {
		letter, err := json.Marshal(op)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrEncodingValue, err)
		}
		if _, err := tx.ExecContext(ctx, insertDeadLetter, op.ID, string(letter), reason, toUnixMilli(s.now())); err != nil {
			log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to write dead letter")
			return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if _, err := tx.ExecContext(ctx, removeOperation, op.ID); err != nil {
			log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to drop operation")
			return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, updateOperationRetries, op.Retries, op.LastError, op.ID); err != nil {
			log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to update retries")
			return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "SQLiteStore.IncrementRetry").Str("op_id", id).Msg("failed to commit transaction")
		return false, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return dropped, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRowContext(ctx, countOperations).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return count, nil
}

// DeadLetters returns dropped operations, oldest first.
func (s *SQLiteStore) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	log := logger.FromContext(ctx)

	rows, err := s.DB.QueryContext(ctx, listDeadLetters)
	if err != nil {
		log.Err(err).Str("func", "SQLiteStore.DeadLetters").Msg("failed to query dead letters")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	letters := make([]models.DeadLetter, 0)
	for rows.Next() {
		var (
			letter   models.DeadLetter
			raw      string
			failedAt int64
		)
		if err := rows.Scan(&raw, &letter.Reason, &failedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err := json.Unmarshal([]byte(raw), &letter.Operation); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingValue, err)
		}
		letter.FailedAt = fromUnixMilli(failedAt)
		letters = append(letters, letter)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return letters, nil
}

func (s *SQLiteStore) PurgeDeadLetters(ctx context.Context) (int64, error) {
	result, err := s.DB.ExecContext(ctx, purgeDeadLetters)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return result.RowsAffected()
}

func scanOperation(row rowScanner) (models.SyncOperation, error) {
	var (
		op        models.SyncOperation
		payload   string
		createdAt int64
	)

	err := row.Scan(
		&op.ID,
		&op.Kind,
		&op.Collection,
		&op.BusinessID,
		&payload,
		&createdAt,
		&op.Retries,
		&op.MaxRetries,
		&op.LastError,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncOperation{}, err
		}
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal([]byte(payload), &op.Payload); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrDecodingValue, err)
	}
	op.Payload = normalizeRecord(op.Payload)
	op.CreatedAt = fromUnixMilli(createdAt)

	return op, nil
}
