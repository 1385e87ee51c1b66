package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// GetMetadata returns the value stored under key. found is false when the
// key was never written.
func (s *SQLiteStore) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, getMetadata, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "SQLiteStore.GetMetadata").
			Str("key", key).
			Msg("failed to read metadata")
		return "", false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetMetadata(ctx context.Context, key, value string) error {
	if _, err := s.DB.ExecContext(ctx, setMetadata, key, value); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "SQLiteStore.SetMetadata").
			Str("key", key).
			Msg("failed to write metadata")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
