package service

import (
	"context"

	"github.com/MKhiriev/go-biz-sync/models"
)

// Synchronizer reconciles the write queue and the local cache with the
// remote document store.
type Synchronizer interface {
	// SyncNow drains the write queue then pulls every tracked collection.
	// Remote failures are reported in the returned report; only Local Store
	// failures are returned as an error.
	SyncNow(ctx context.Context) (models.SyncReport, error)
	// TriggerSync starts a background synchronization when the device is
	// online and none is running. It reports whether a run was started.
	TriggerSync() bool
	GetStatus(ctx context.Context) (models.SyncStatus, error)

	SetBusinessID(businessID string)
	BusinessID() string

	// Start subscribes to reconnect signals.
	Start()
	// Dispose unsubscribes, cancels background runs and waits for them.
	Dispose()
}

// OfflineService is the surface UI code talks to.
type OfflineService interface {
	SaveOfflineData(ctx context.Context, collection models.Collection, records []models.Record) error
	GetOfflineData(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error)

	AddToSyncQueue(ctx context.Context, request models.QueueRequest) (models.SyncOperation, error)
	SyncOfflineData(ctx context.Context) (models.SyncReport, error)

	IsOnline() bool
	GetSyncStatus(ctx context.Context) (models.SyncStatus, error)

	// CleanupExpiredData removes cached records older than the retention
	// period. The write queue and the remote store are never touched.
	CleanupExpiredData(ctx context.Context) (int64, error)

	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
	PurgeDeadLetters(ctx context.Context) (int64, error)

	SetBusinessID(businessID string)
}

// DocumentService serves the collections of the reference document store.
// The business scope is taken from the request context.
type DocumentService interface {
	List(ctx context.Context, collection models.Collection) ([]models.Record, error)
	Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)
	Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error)
	Delete(ctx context.Context, collection models.Collection, id string) error
}

// DocumentServiceWrapper defines middleware composition for DocumentService.
// Implementations wrap an existing DocumentService to add behavior such as
// validation.
type DocumentServiceWrapper interface {
	Wrap(DocumentService) DocumentService
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// ConnectivityMonitor is the part of the network monitor the services
// depend on.
type ConnectivityMonitor interface {
	IsOnline() bool
	OnReconnect(fn func()) (unsubscribe func())
}

// IDGenerator issues queue operation identifiers.
type IDGenerator interface {
	Generate() string
}
