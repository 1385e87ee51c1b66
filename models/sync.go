package models

import "time"

// MetadataLastSync is the metadata key holding the time of the last
// successful full synchronization.
const MetadataLastSync = "lastSync"

// MetadataSchemaVersion is the metadata key holding the local schema version
// of engines that do not track migrations themselves.
const MetadataSchemaVersion = "schemaVersion"

// SyncStatus is a read-only snapshot for UI display.
type SyncStatus struct {
	IsOnline          bool       `json:"is_online"`
	LastSync          *time.Time `json:"last_sync,omitempty"`
	PendingOperations int        `json:"pending_operations"`
	DeadLetters       int        `json:"dead_letters"`
	Syncing           bool       `json:"syncing"`
}

// SyncReport describes the outcome of one synchronization attempt.
type SyncReport struct {
	// Skipped is true when the attempt did nothing because the device was
	// offline.
	Skipped bool

	// Coalesced is true when another synchronization was already running
	// and this trigger was folded into it.
	Coalesced bool

	// Applied counts queue operations acknowledged by the remote store.
	Applied int
	// Failed counts queue operations that failed and stay queued.
	Failed int
	// Dropped counts queue operations moved to the dead-letter log.
	Dropped int

	// Pulled counts collections refreshed from the remote store.
	Pulled int
	// PullFailed counts collections whose refresh failed.
	PullFailed int

	// LastSync is set when the attempt completed both phases.
	LastSync *time.Time
}
