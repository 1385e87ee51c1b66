package service

import (
	"github.com/MKhiriev/go-biz-sync/internal/adapter"
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
	"github.com/MKhiriev/go-biz-sync/internal/workers"
)

// ClientServices groups the sync agent services and their background jobs.
type ClientServices struct {
	Synchronizer   Synchronizer
	OfflineService OfflineService

	SyncJob    workers.Worker
	CleanupJob workers.Worker
}

func NewClientServices(
	storages *store.LocalStorages,
	remote adapter.RemoteStore,
	monitor ConnectivityMonitor,
	cfg config.ClientConfig,
	logger *logger.Logger,
) *ClientServices {
	synchronizer := NewSynchronizer(storages, remote, monitor, cfg.App.BusinessID, cfg.Adapter.RequestTimeout, logger)
	offline := NewOfflineService(storages, synchronizer, monitor, utils.NewUUIDGenerator(), cfg, logger)

	return &ClientServices{
		Synchronizer:   synchronizer,
		OfflineService: offline,
		SyncJob:        NewSyncJob(synchronizer, cfg.Workers.SyncInterval, logger),
		CleanupJob:     NewCleanupJob(offline, cfg.Workers.CleanupInterval, logger),
	}
}
