package store

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

func (s *BoltStore) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := rootBucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		if raw := bucket.Get([]byte(key)); raw != nil {
			value, found = string(raw), true
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}

	return value, found, nil
}

func (s *BoltStore) SetMetadata(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := rootBucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
		}
		return nil
	})
}
