// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-biz-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CollectionRepository is the cache of remote collections kept on the
// device.
type CollectionRepository interface {
	// ReplaceCollection atomically clears the collection and inserts records.
	ReplaceCollection(ctx context.Context, collection models.Collection, records []models.Record) error
	// ReadCollection returns all cached records ordered by creation time,
	// restricted to businessID unless it is empty.
	ReadCollection(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error)
	// UpsertRecord merges record into the cached record with the same id or
	// inserts it when absent.
	UpsertRecord(ctx context.Context, collection models.Collection, record models.Record) error
	// DeleteRecord removes a cached record. Deleting an absent record is not
	// an error.
	DeleteRecord(ctx context.Context, collection models.Collection, id string) error
	// DeleteOlderThan removes cached records created before cutoff.
	DeleteOlderThan(ctx context.Context, collection models.Collection, cutoff time.Time) (int64, error)
}

// QueueRepository is the durable FIFO of mutations awaiting the remote
// store, together with the log of operations dropped after exhausting
// their retries.
type QueueRepository interface {
	Enqueue(ctx context.Context, op models.SyncOperation) error
	PeekAll(ctx context.Context) ([]models.SyncOperation, error)
	Remove(ctx context.Context, id string) error
	// IncrementRetry records a failed application. When the retry budget is
	// used up the operation is moved to the dead-letter log and dropped is
	// true.
	IncrementRetry(ctx context.Context, id, reason string) (dropped bool, err error)
	Count(ctx context.Context) (int, error)

	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
	PurgeDeadLetters(ctx context.Context) (int64, error)
}

// MetadataRepository is a small key/value store of operational state.
type MetadataRepository interface {
	GetMetadata(ctx context.Context, key string) (value string, found bool, err error)
	SetMetadata(ctx context.Context, key, value string) error
}

// DocumentRepository is the server of record used by the reference document
// store.
type DocumentRepository interface {
	List(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error)
	Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)
	Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)
	Delete(ctx context.Context, collection models.Collection, businessID, id string) error
}

// localEngine is implemented by every on-device storage engine.
type localEngine interface {
	CollectionRepository
	QueueRepository
	MetadataRepository

	Initialize(ctx context.Context) error
	Close() error
}
