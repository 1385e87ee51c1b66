package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

// Enqueue appends op under the next bucket sequence so that cursor order
// is insertion order.
func (s *BoltStore) Enqueue(ctx context.Context, op models.SyncOperation) error {
	log := logger.FromContext(ctx)

	op.Retries = 0
	if err := validateOperation(ctx, s.validator, op); err != nil {
		return err
	}
	op.Payload = normalizeRecord(op.Payload)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue, err := rootBucket(tx, bucketSyncQueue)
		if err != nil {
			return err
		}
		index, err := rootBucket(tx, bucketQueueIndex)
		if err != nil {
			return err
		}

		if index.Get([]byte(op.ID)) != nil {
			return fmt.Errorf("%w: %s", ErrOperationExists, op.ID)
		}

		seq, err := queue.NextSequence()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}

		raw, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncodingValue, err)
		}

		key := sequenceKey(seq)
		if err := queue.Put(key, raw); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}
		if err := index.Put([]byte(op.ID), key); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "BoltStore.Enqueue").
			Str("op_id", op.ID).
			Str("kind", string(op.Kind)).
			Str("collection", op.Collection.String()).
			Msg("failed to enqueue operation")
		return err
	}

	return nil
}

func (s *BoltStore) PeekAll(ctx context.Context) ([]models.SyncOperation, error) {
	ops := make([]models.SyncOperation, 0, 16)

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue, err := rootBucket(tx, bucketSyncQueue)
		if err != nil {
			return err
		}

		return queue.ForEach(func(_, raw []byte) error {
			op, err := decodeOperation(raw)
			if err != nil {
				return err
			}
			ops = append(ops, op)
			return nil
		})
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "BoltStore.PeekAll").Msg("failed to read sync queue")
		return nil, err
	}

	return ops, nil
}

func (s *BoltStore) Remove(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := removeQueued(tx, id)
		return err
	})
}

// IncrementRetry updates the operation in place or, once its retries are
// used up, moves it to the dead-letter bucket.
func (s *BoltStore) IncrementRetry(ctx context.Context, id, reason string) (bool, error) {
	log := logger.FromContext(ctx)

	var dropped bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue, err := rootBucket(tx, bucketSyncQueue)
		if err != nil {
			return err
		}
		index, err := rootBucket(tx, bucketQueueIndex)
		if err != nil {
			return err
		}

		key := index.Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
		}
		op, err := decodeOperation(queue.Get(key))
		if err != nil {
			return err
		}

		op.Retries++
		op.LastError = reason
		dropped = op.Exhausted()

		if !dropped {
			raw, err := json.Marshal(op)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrEncodingValue, err)
			}
			if err := queue.Put(key, raw); err != nil {
				return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
			}
			return nil
		}

		letters, err := rootBucket(tx, bucketDeadLetters)
		if err != nil {
			return err
		}
		letter := models.DeadLetter{Operation: op, Reason: reason, FailedAt: s.now().UTC().Truncate(1e6)}
		raw, err := json.Marshal(letter)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncodingValue, err)
		}
		if err := letters.Put(append(timeKey(letter.FailedAt), op.ID...), raw); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}

		_, err = removeQueued(tx, id)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "BoltStore.IncrementRetry").Str("op_id", id).Msg("failed to record failed attempt")
		return false, err
	}

	return dropped, nil
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		queue, err := rootBucket(tx, bucketSyncQueue)
		if err != nil {
			return err
		}
		count = queue.Stats().KeyN
		return nil
	})
	return count, err
}

// DeadLetters returns dropped operations, oldest first.
func (s *BoltStore) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	letters := make([]models.DeadLetter, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := rootBucket(tx, bucketDeadLetters)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, raw []byte) error {
			var letter models.DeadLetter
			if err := json.Unmarshal(raw, &letter); err != nil {
				return fmt.Errorf("%w: %w", ErrDecodingValue, err)
			}
			letters = append(letters, letter)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return letters, nil
}

func (s *BoltStore) PurgeDeadLetters(ctx context.Context) (int64, error) {
	var purged int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := rootBucket(tx, bucketDeadLetters)
		if err != nil {
			return err
		}
		purged = int64(bucket.Stats().KeyN)

		if err := tx.DeleteBucket(bucketDeadLetters); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}
		if _, err := tx.CreateBucket(bucketDeadLetters); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return purged, nil
}

func removeQueued(tx *bbolt.Tx, id string) (models.SyncOperation, error) {
	queue, err := rootBucket(tx, bucketSyncQueue)
	if err != nil {
		return models.SyncOperation{}, err
	}
	index, err := rootBucket(tx, bucketQueueIndex)
	if err != nil {
		return models.SyncOperation{}, err
	}

	key := index.Get([]byte(id))
	if key == nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	key = append([]byte(nil), key...)

	op, err := decodeOperation(queue.Get(key))
	if err != nil {
		return models.SyncOperation{}, err
	}

	if err := queue.Delete(key); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}
	if err := index.Delete([]byte(id)); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}

	return op, nil
}

func decodeOperation(raw []byte) (models.SyncOperation, error) {
	if raw == nil {
		return models.SyncOperation{}, fmt.Errorf("%w: queue index points to missing operation", ErrDecodingValue)
	}

	var op models.SyncOperation
	if err := json.Unmarshal(raw, &op); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrDecodingValue, err)
	}
	op.Payload = normalizeRecord(op.Payload)
	if !op.CreatedAt.IsZero() {
		op.CreatedAt = op.CreatedAt.UTC().Truncate(1e6)
	}
	return op, nil
}
