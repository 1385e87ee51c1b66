// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer client of the remote document
// store.
//
// The primary abstraction is [RemoteStore], which decouples the synchronizer
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteStore]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-biz-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore reads and writes documents of the remote document store by
// collection name and business id. Implementations are responsible for
// serialisation, authentication header management, and mapping
// transport-level errors to the sentinel values defined in this package.
type RemoteStore interface {
	// List returns every document of collection owned by businessID.
	List(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error)

	// Insert creates a document. Returns [ErrConflict] (wrapped) when a
	// document with the same id already exists.
	Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)

	// Merge writes record.Fields over the stored document, creating it when
	// absent.
	Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)

	// Delete removes a document. Returns [ErrNotFound] (wrapped) when there
	// is nothing to delete.
	Delete(ctx context.Context, collection models.Collection, id string) error
}
