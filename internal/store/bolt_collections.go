package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

// ReplaceCollection drops and recreates the collection bucket, then writes
// records, all in one transaction.
func (s *BoltStore) ReplaceCollection(ctx context.Context, collection models.Collection, records []models.Record) error {
	log := logger.FromContext(ctx)

	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}
	if err := validateRecords(ctx, s.validator, records...); err != nil {
		log.Err(err).
			Str("func", "BoltStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("refusing to replace collection with invalid records")
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(collection)) != nil {
			if err := tx.DeleteBucket([]byte(collection)); err != nil {
				return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
			}
		}
		root, err := createCollectionBucket(tx, collection)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}

		for _, record := range records {
			if err := putRecord(root, normalizeRecord(record)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "BoltStore.ReplaceCollection").
			Str("collection", collection.String()).
			Msg("failed to replace collection")
		return err
	}

	log.Debug().
		Str("func", "BoltStore.ReplaceCollection").
		Str("collection", collection.String()).
		Int("records", len(records)).
		Msg("collection replaced")

	return nil
}

// ReadCollection walks the by_created index when no business is given and
// the by_business index otherwise.
func (s *BoltStore) ReadCollection(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, 50)
	err := s.db.View(func(tx *bbolt.Tx) error {
		root, err := collectionBucket(tx, collection)
		if err != nil {
			return err
		}
		data := root.Bucket(bucketRecords)

		if businessID == "" {
			c := root.Bucket(bucketByCreated).Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				record, err := getRecord(data, k[8:])
				if err != nil {
					return err
				}
				records = append(records, record)
			}
			return nil
		}

		prefix := businessKey(businessID, "")
		c := root.Bucket(bucketByBusiness).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			record, err := getRecord(data, k[len(prefix):])
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		sortRecords(records)
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "BoltStore.ReadCollection").
			Str("collection", collection.String()).
			Str("business_id", businessID).
			Msg("failed to read collection")
		return nil, err
	}

	return records, nil
}

func (s *BoltStore) UpsertRecord(ctx context.Context, collection models.Collection, record models.Record) error {
	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}
	if err := validateRecords(ctx, s.validator, record); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := collectionBucket(tx, collection)
		if err != nil {
			return err
		}

		merged := normalizeRecord(record)
		if raw := root.Bucket(bucketRecords).Get([]byte(record.ID)); raw != nil {
			cached, err := decodeRecord(raw)
			if err != nil {
				return err
			}
			merged = mergeRecord(cached, record)
		}

		return putRecord(root, merged)
	})
}

func (s *BoltStore) DeleteRecord(ctx context.Context, collection models.Collection, id string) error {
	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := collectionBucket(tx, collection)
		if err != nil {
			return err
		}
		return deleteRecord(root, id)
	})
}

// DeleteOlderThan walks the by_created index from the oldest entry up to
// cutoff.
func (s *BoltStore) DeleteOlderThan(ctx context.Context, collection models.Collection, cutoff time.Time) (int64, error) {
	if err := validateCollection(ctx, s.validator, collection); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		root, err := collectionBucket(tx, collection)
		if err != nil {
			return err
		}

		var expired []string
		c := root.Bucket(bucketByCreated).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			created := timeFromKey(k)
			if created.IsZero() {
				continue
			}
			if !created.Before(cutoff) {
				break
			}
			expired = append(expired, string(k[8:]))
		}

		for _, id := range expired {
			if err := deleteRecord(root, id); err != nil {
				return err
			}
		}
		deleted = int64(len(expired))
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "BoltStore.DeleteOlderThan").
			Str("collection", collection.String()).
			Time("cutoff", cutoff).
			Msg("failed to delete expired records")
		return 0, err
	}

	return deleted, nil
}

// putRecord writes record and its index entries, replacing the index
// entries of a previous version with the same id.
func putRecord(root *bbolt.Bucket, record models.Record) error {
	if err := deleteRecord(root, record.ID); err != nil {
		return err
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	if err := root.Bucket(bucketRecords).Put([]byte(record.ID), raw); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	if err := root.Bucket(bucketByBusiness).Put(businessKey(record.BusinessID, record.ID), []byte{}); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	if err := root.Bucket(bucketByCreated).Put(createdKey(record.CreatedAt, record.ID), []byte{}); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	return nil
}

func deleteRecord(root *bbolt.Bucket, id string) error {
	data := root.Bucket(bucketRecords)
	raw := data.Get([]byte(id))
	if raw == nil {
		return nil
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return err
	}

	if err := root.Bucket(bucketByBusiness).Delete(businessKey(record.BusinessID, record.ID)); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	if err := root.Bucket(bucketByCreated).Delete(createdKey(record.CreatedAt, record.ID)); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	if err := data.Delete([]byte(id)); err != nil {
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	return nil
}

func getRecord(data *bbolt.Bucket, id []byte) (models.Record, error) {
	raw := data.Get(id)
	if raw == nil {
		return models.Record{}, fmt.Errorf("%w: index points to missing record %q", ErrDecodingValue, id)
	}
	return decodeRecord(raw)
}

func decodeRecord(raw []byte) (models.Record, error) {
	var record models.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrDecodingValue, err)
	}
	return normalizeRecord(record), nil
}
