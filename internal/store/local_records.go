package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MKhiriev/go-biz-sync/internal/validators"
	"github.com/MKhiriev/go-biz-sync/models"
)

// normalizeRecord brings a record to the precision both engines persist:
// UTC milliseconds and a non-nil field set.
func normalizeRecord(record models.Record) models.Record {
	if !record.CreatedAt.IsZero() {
		record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	if record.Fields == nil {
		record.Fields = models.Fields{}
	}
	return record
}

// mergeRecord applies an optimistic update on top of the cached record.
func mergeRecord(cached, patch models.Record) models.Record {
	merged := cached
	merged.Fields = cached.Fields.Merge(patch.Fields)
	if patch.BusinessID != "" {
		merged.BusinessID = patch.BusinessID
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = patch.CreatedAt
	}
	return normalizeRecord(merged)
}

func sortRecords(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func validateCollection(ctx context.Context, v validators.Validator, collection models.Collection) error {
	if err := v.Validate(ctx, collection); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownCollection, err)
	}
	return nil
}

func validateRecords(ctx context.Context, v validators.Validator, records ...models.Record) error {
	for i, record := range records {
		if err := v.Validate(ctx, record, validators.FieldID, validators.FieldBusinessID); err != nil {
			return fmt.Errorf("%w at index %d: %w", ErrInvalidRecord, i, err)
		}
	}
	return nil
}

func validateOperation(ctx context.Context, v validators.Validator, op models.SyncOperation) error {
	if err := v.Validate(ctx, op); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	return nil
}
