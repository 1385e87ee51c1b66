// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OperationKind is the closed set of mutations that can be queued for the
// remote store.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Valid reports whether k is a known operation kind.
func (k OperationKind) Valid() bool {
	switch k {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// DefaultMaxRetries is used when an operation is queued without an explicit
// retry threshold.
const DefaultMaxRetries = 5

// SyncOperation is one pending mutation owned by the write queue.
type SyncOperation struct {
	// ID identifies the operation inside the queue.
	ID string `json:"id"`

	// Kind selects the remote call used to apply the operation.
	Kind OperationKind `json:"type"`

	// Collection is the target collection.
	Collection Collection `json:"collection"`

	// BusinessID is the business that owns the mutated record.
	BusinessID string `json:"business_id"`

	// Payload is the full record for create, the changed fields for update
	// and only the identifier for delete.
	Payload Record `json:"data"`

	// CreatedAt is the enqueue time.
	CreatedAt time.Time `json:"created_at"`

	// Retries counts failed remote applications. Starts at zero and never
	// decreases.
	Retries int `json:"retries"`

	// MaxRetries is the number of failures after which the operation is
	// moved to the dead-letter log.
	MaxRetries int `json:"max_retries"`

	// LastError is the message of the most recent failed application.
	LastError string `json:"last_error,omitempty"`
}

// Exhausted reports whether the operation has used up its retry budget.
func (o SyncOperation) Exhausted() bool {
	return o.Retries >= o.MaxRetries
}

// DeadLetter is an operation that was dropped from the queue after
// exhausting its retries. It is retained for audit and surfaced to the UI.
type DeadLetter struct {
	Operation SyncOperation `json:"operation"`
	Reason    string        `json:"reason"`
	FailedAt  time.Time     `json:"failed_at"`
}

// QueueRequest is what UI code hands to the offline facade to record a
// mutation.
type QueueRequest struct {
	Type       OperationKind `json:"type"`
	Collection Collection    `json:"collection"`
	Data       Record        `json:"data"`
	BusinessID string        `json:"business_id"`
}
