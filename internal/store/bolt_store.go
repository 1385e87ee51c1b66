package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/validators"
	"github.com/MKhiriev/go-biz-sync/models"
)

// boltSchemaVersion is raised whenever Initialize starts declaring a new
// bucket. Existing buckets are never dropped on upgrade.
const boltSchemaVersion = 1

var (
	// top-level buckets
	bucketSyncQueue   = []byte("sync_queue")
	bucketQueueIndex  = []byte("queue_index")
	bucketMetadata    = []byte("metadata")
	bucketDeadLetters = []byte("dead_letters")

	// sub-buckets of every collection bucket
	bucketRecords    = []byte("records")
	bucketByBusiness = []byte("by_business")
	bucketByCreated  = []byte("by_created")
)

// BoltStore is the bbolt engine of the local store.
//
// Every collection is a top-level bucket holding the records keyed by id
// and two index sub-buckets: by_business (business id, 0x00, id) and
// by_created (sortable creation time, id). The queue is keyed by a bbolt
// sequence so cursor order is insertion order.
type BoltStore struct {
	db        *bbolt.DB
	validator validators.Validator
	logger    *logger.Logger
	now       func() time.Time
}

// NewBoltStore opens the bbolt file at path, creating it when missing.
func NewBoltStore(path string, log *logger.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		log.Err(err).Str("func", "NewBoltStore").Str("path", path).Msg("failed to open boltdb")
		return nil, fmt.Errorf("%w: failed to open boltdb: %w", ErrLocalStoreUnavailable, err)
	}

	return &BoltStore{
		db:        db,
		validator: validators.NewSyncValidator(),
		logger:    log,
		now:       time.Now,
	}, nil
}

// Initialize creates every bucket that does not exist yet and records the
// schema version.
func (s *BoltStore) Initialize(ctx context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, collection := range models.TrackedCollections {
			if _, err := createCollectionBucket(tx, collection); err != nil {
				return err
			}
		}

		for _, name := range [][]byte{bucketSyncQueue, bucketQueueIndex, bucketMetadata, bucketDeadLetters} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMetadata)
		current, _ := strconv.Atoi(string(meta.Get([]byte(models.MetadataSchemaVersion))))
		if current < boltSchemaVersion {
			return meta.Put([]byte(models.MetadataSchemaVersion), []byte(strconv.Itoa(boltSchemaVersion)))
		}
		return nil
	})
	if err != nil {
		s.logger.Err(err).Str("func", "BoltStore.Initialize").Msg("failed to initialize buckets")
		return fmt.Errorf("%w: %w", ErrBoltTransaction, err)
	}

	return nil
}

func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func createCollectionBucket(tx *bbolt.Tx, collection models.Collection) (*bbolt.Bucket, error) {
	root, err := tx.CreateBucketIfNotExists([]byte(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s bucket: %w", collection, err)
	}
	for _, name := range [][]byte{bucketRecords, bucketByBusiness, bucketByCreated} {
		if _, err := root.CreateBucketIfNotExists(name); err != nil {
			return nil, fmt.Errorf("failed to create %s/%s bucket: %w", collection, name, err)
		}
	}
	return root, nil
}

func collectionBucket(tx *bbolt.Tx, collection models.Collection) (*bbolt.Bucket, error) {
	root := tx.Bucket([]byte(collection))
	if root == nil {
		return nil, fmt.Errorf("%w: %s bucket not found", ErrLocalStoreUnavailable, collection)
	}
	return root, nil
}

func rootBucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %s bucket not found", ErrLocalStoreUnavailable, name)
	}
	return b, nil
}

// timeKey encodes t as 8 big-endian bytes that sort like the times they
// encode, including times before the epoch.
func timeKey(t time.Time) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(toUnixMilli(t))^(1<<63))
	return key
}

func timeFromKey(key []byte) time.Time {
	return fromUnixMilli(int64(binary.BigEndian.Uint64(key[:8]) ^ (1 << 63)))
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func businessKey(businessID, id string) []byte {
	key := make([]byte, 0, len(businessID)+1+len(id))
	key = append(key, businessID...)
	key = append(key, 0)
	return append(key, id...)
}

func createdKey(createdAt time.Time, id string) []byte {
	return append(timeKey(createdAt), id...)
}
