package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/internal/validators"
	"github.com/MKhiriev/go-biz-sync/models"
)

type offlineService struct {
	collections store.CollectionRepository
	queue       store.QueueRepository

	synchronizer Synchronizer
	monitor      ConnectivityMonitor
	validator    validators.Validator
	ids          IDGenerator
	now          func() time.Time

	maxRetries int
	retention  time.Duration

	logger *logger.Logger
}

// NewOfflineService builds the facade over the local storages and the
// synchronizer. maxRetries and retention fall back to their defaults when
// not positive.
func NewOfflineService(
	storages *store.LocalStorages,
	synchronizer Synchronizer,
	monitor ConnectivityMonitor,
	ids IDGenerator,
	cfg config.ClientConfig,
	logger *logger.Logger,
) OfflineService {
	maxRetries := cfg.Queue.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	retention := cfg.Storage.Retention
	if retention <= 0 {
		retention = config.DefaultRetention
	}

	return &offlineService{
		collections:  storages.Collections,
		queue:        storages.Queue,
		synchronizer: synchronizer,
		monitor:      monitor,
		validator:    validators.NewSyncValidator(),
		ids:          ids,
		now:          time.Now,
		maxRetries:   maxRetries,
		retention:    retention,
		logger:       logger,
	}
}

func (o *offlineService) SaveOfflineData(ctx context.Context, collection models.Collection, records []models.Record) error {
	return o.collections.ReplaceCollection(ctx, collection, records)
}

func (o *offlineService) GetOfflineData(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	return o.collections.ReadCollection(ctx, collection, businessID)
}

// AddToSyncQueue records a mutation. The operation is durable before the
// cache is touched.
func (o *offlineService) AddToSyncQueue(ctx context.Context, request models.QueueRequest) (models.SyncOperation, error) {
	if request.BusinessID == "" {
		request.BusinessID = o.synchronizer.BusinessID()
	}
	if err := o.validator.Validate(ctx, request); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	now := o.now().UTC().Truncate(time.Millisecond)

	payload := request.Data
	if payload.BusinessID == "" {
		payload.BusinessID = request.BusinessID
	}
	if request.Type == models.OperationCreate && payload.CreatedAt.IsZero() {
		payload.CreatedAt = now
	}

	op := models.SyncOperation{
		ID:         o.ids.Generate(),
		Kind:       request.Type,
		Collection: request.Collection,
		BusinessID: request.BusinessID,
		Payload:    payload,
		CreatedAt:  now,
		MaxRetries: o.maxRetries,
	}

	if err := o.queue.Enqueue(ctx, op); err != nil {
		if errors.Is(err, store.ErrInvalidOperation) {
			return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("func", "offlineService.AddToSyncQueue").
		Str("op_id", op.ID).
		Str("kind", string(op.Kind)).
		Str("collection", op.Collection.String()).
		Msg("operation queued")

	if err := o.applyOptimistic(ctx, op); err != nil {
		log.Err(err).
			Str("func", "offlineService.AddToSyncQueue").
			Str("op_id", op.ID).
			Msg("optimistic cache update failed, operation stays queued")
		return op, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	if o.monitor.IsOnline() {
		o.synchronizer.TriggerSync()
	}

	return op, nil
}

func (o *offlineService) applyOptimistic(ctx context.Context, op models.SyncOperation) error {
	switch op.Kind {
	case models.OperationCreate, models.OperationUpdate:
		// the cached copy of a record seen first through an update starts
		// its retention window now
		record := op.Payload
		if record.CreatedAt.IsZero() {
			record.CreatedAt = op.CreatedAt
		}
		return o.collections.UpsertRecord(ctx, op.Collection, record)
	case models.OperationDelete:
		return o.collections.DeleteRecord(ctx, op.Collection, op.Payload.ID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperationKind, op.Kind)
	}
}

func (o *offlineService) SyncOfflineData(ctx context.Context) (models.SyncReport, error) {
	return o.synchronizer.SyncNow(ctx)
}

func (o *offlineService) IsOnline() bool {
	return o.monitor.IsOnline()
}

func (o *offlineService) GetSyncStatus(ctx context.Context) (models.SyncStatus, error) {
	return o.synchronizer.GetStatus(ctx)
}

func (o *offlineService) CleanupExpiredData(ctx context.Context) (int64, error) {
	cutoff := o.now().Add(-o.retention)

	var total int64
	for _, collection := range models.TrackedCollections {
		removed, err := o.collections.DeleteOlderThan(ctx, collection, cutoff)
		if err != nil {
			return total, fmt.Errorf("%w: %w", ErrLocalStore, err)
		}
		total += removed
	}

	o.logger.Info().
		Str("func", "offlineService.CleanupExpiredData").
		Time("cutoff", cutoff).
		Int64("removed", total).
		Msg("expired records removed")

	return total, nil
}

func (o *offlineService) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return o.queue.DeadLetters(ctx)
}

func (o *offlineService) PurgeDeadLetters(ctx context.Context) (int64, error) {
	return o.queue.PurgeDeadLetters(ctx)
}

func (o *offlineService) SetBusinessID(businessID string) {
	o.synchronizer.SetBusinessID(businessID)
}
