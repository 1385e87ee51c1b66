package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/workers"
)

// NewSyncJob returns a worker running a full sync every interval. It retries
// queued operations without waiting for a reconnect. Runs while offline are
// skipped by the synchronizer itself.
func NewSyncJob(synchronizer Synchronizer, interval time.Duration, log *logger.Logger) workers.Worker {
	return workers.NewPeriodic("sync", interval, func(ctx context.Context) error {
		_, err := synchronizer.SyncNow(ctx)
		return err
	}, log)
}

// NewCleanupJob returns a worker removing expired cached records. The first
// cleanup runs immediately.
func NewCleanupJob(offline OfflineService, interval time.Duration, log *logger.Logger) workers.Worker {
	cleanup := func(ctx context.Context) error {
		_, err := offline.CleanupExpiredData(ctx)
		return err
	}
	periodic := workers.NewPeriodic("cleanup", interval, cleanup, log)

	return workers.WorkerFunc(func(ctx context.Context) error {
		if err := cleanup(ctx); err != nil {
			log.Err(err).Str("func", "NewCleanupJob").Msg("initial cleanup failed")
		}
		return periodic.Run(ctx)
	})
}
