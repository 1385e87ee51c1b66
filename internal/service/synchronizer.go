// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-biz-sync/internal/adapter"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/models"
)

// SynchronizerOption customizes a synchronizer built by NewSynchronizer.
type SynchronizerOption func(*synchronizer)

// WithClock replaces time.Now as the source of the lastSync timestamp.
func WithClock(now func() time.Time) SynchronizerOption {
	return func(s *synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

type synchronizer struct {
	collections store.CollectionRepository
	queue       store.QueueRepository
	metadata    store.MetadataRepository
	remote      adapter.RemoteStore
	monitor     ConnectivityMonitor

	now     func() time.Time
	timeout time.Duration

	businessMu sync.RWMutex
	businessID string

	// syncing is the in-flight guard. Whoever flips it to true owns the run.
	syncing atomic.Bool

	mu          sync.Mutex
	runCtx      context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	started     bool
	disposed    bool
	wg          sync.WaitGroup

	logger *logger.Logger
}

// NewSynchronizer builds a Synchronizer over the local storages and the
// remote store. Every remote call is bounded by timeout. The synchronizer
// does not react to reconnects until Start is called.
func NewSynchronizer(
	storages *store.LocalStorages,
	remote adapter.RemoteStore,
	monitor ConnectivityMonitor,
	businessID string,
	timeout time.Duration,
	logger *logger.Logger,
	opts ...SynchronizerOption,
) Synchronizer {
	s := &synchronizer{
		collections: storages.Collections,
		queue:       storages.Queue,
		metadata:    storages.Metadata,
		remote:      remote,
		monitor:     monitor,
		now:         time.Now,
		timeout:     timeout,
		businessID:  businessID,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *synchronizer) SetBusinessID(businessID string) {
	s.businessMu.Lock()
	defer s.businessMu.Unlock()
	s.businessID = businessID
}

func (s *synchronizer) BusinessID() string {
	s.businessMu.RLock()
	defer s.businessMu.RUnlock()
	return s.businessID
}

func (s *synchronizer) SyncNow(ctx context.Context) (models.SyncReport, error) {
	if !s.monitor.IsOnline() {
		s.logger.Debug().Str("func", "synchronizer.SyncNow").Msg("offline, sync skipped")
		return models.SyncReport{Skipped: true}, nil
	}
	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.Debug().Str("func", "synchronizer.SyncNow").Msg("sync already running")
		return models.SyncReport{Coalesced: true}, nil
	}
	defer s.syncing.Store(false)

	return s.run(ctx)
}

func (s *synchronizer) TriggerSync() bool {
	if !s.monitor.IsOnline() {
		return false
	}
	return s.startBackground("trigger")
}

func (s *synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.disposed {
		return
	}
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = s.monitor.OnReconnect(s.onReconnect)
	s.started = true
}

func (s *synchronizer) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// onReconnect runs in the goroutine that reported the reconnect. It takes
// the guard before returning so that a burst of reconnects collapses into a
// single run.
func (s *synchronizer) onReconnect() {
	s.logger.Info().Str("func", "synchronizer.onReconnect").Msg("connection restored")
	s.startBackground("reconnect")
}

func (s *synchronizer) startBackground(reason string) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.Debug().
			Str("func", "synchronizer.startBackground").
			Str("reason", reason).
			Msg("sync already running, trigger coalesced")
		return false
	}

	s.mu.Lock()
	if !s.started || s.disposed {
		s.mu.Unlock()
		s.syncing.Store(false)
		return false
	}
	ctx := s.runCtx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.syncing.Store(false)

		report, err := s.run(ctx)
		if err != nil {
			s.logger.Err(err).
				Str("func", "synchronizer.startBackground").
				Str("reason", reason).
				Msg("background sync failed")
			return
		}
		s.logger.Info().
			Str("func", "synchronizer.startBackground").
			Str("reason", reason).
			Int("applied", report.Applied).
			Int("failed", report.Failed).
			Int("dropped", report.Dropped).
			Int("pulled", report.Pulled).
			Int("pull_failed", report.PullFailed).
			Msg("background sync finished")
	}()

	return true
}

// run executes both phases. The caller holds the in-flight guard.
func (s *synchronizer) run(ctx context.Context) (models.SyncReport, error) {
	var report models.SyncReport

	if err := s.drain(ctx, &report); err != nil {
		return report, err
	}
	if err := s.pull(ctx, &report); err != nil {
		return report, err
	}

	return report, nil
}

func (s *synchronizer) drain(ctx context.Context, report *models.SyncReport) error {
	ops, err := s.queue.PeekAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}

		applyErr := s.apply(ctx, op)
		if applyErr == nil {
			if err := s.queue.Remove(ctx, op.ID); err != nil {
				return fmt.Errorf("%w: %w", ErrLocalStore, err)
			}
			report.Applied++
			continue
		}

		// shutdown is not a failure of the operation
		if ctx.Err() != nil {
			return ctx.Err()
		}

		dropped, err := s.queue.IncrementRetry(ctx, op.ID, applyErr.Error())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLocalStore, err)
		}

		if dropped {
			report.Dropped++
			s.logger.Err(applyErr).
				Str("func", "synchronizer.drain").
				Str("op_id", op.ID).
				Str("kind", string(op.Kind)).
				Str("collection", op.Collection.String()).
				Str("record_id", op.Payload.ID).
				Str("business_id", op.BusinessID).
				Int("retries", op.Retries+1).
				Msg("operation dropped after exhausting retries")
			continue
		}

		report.Failed++
		s.logger.Warn().
			Err(applyErr).
			Str("func", "synchronizer.drain").
			Str("op_id", op.ID).
			Str("kind", string(op.Kind)).
			Str("collection", op.Collection.String()).
			Int("retries", op.Retries+1).
			Msg("operation failed, kept in queue")
	}

	return nil
}

func (s *synchronizer) apply(ctx context.Context, op models.SyncOperation) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch op.Kind {
	case models.OperationCreate:
		_, err := s.remote.Insert(callCtx, op.Collection, op.Payload)
		// the record is already there, usually from a run that died before Remove
		if errors.Is(err, adapter.ErrConflict) {
			return nil
		}
		return err
	case models.OperationUpdate:
		_, err := s.remote.Merge(callCtx, op.Collection, op.Payload)
		return err
	case models.OperationDelete:
		err := s.remote.Delete(callCtx, op.Collection, op.Payload.ID)
		if errors.Is(err, adapter.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperationKind, op.Kind)
	}
}

func (s *synchronizer) pull(ctx context.Context, report *models.SyncReport) error {
	businessID := s.BusinessID()
	if businessID == "" {
		s.logger.Warn().Str("func", "synchronizer.pull").Msg("no business id set, pull skipped")
		return nil
	}

	for _, collection := range models.TrackedCollections {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, err := s.list(ctx, collection, businessID)
		if err != nil {
			report.PullFailed++
			s.logger.Warn().
				Err(err).
				Str("func", "synchronizer.pull").
				Str("collection", collection.String()).
				Str("business_id", businessID).
				Msg("collection pull failed")
			continue
		}

		if err := s.collections.ReplaceCollection(ctx, collection, records); err != nil {
			// a bad snapshot from the remote leaves the cache as it was
			if errors.Is(err, store.ErrInvalidRecord) {
				report.PullFailed++
				s.logger.Warn().
					Err(err).
					Str("func", "synchronizer.pull").
					Str("collection", collection.String()).
					Msg("remote snapshot rejected")
				continue
			}
			return fmt.Errorf("%w: %w", ErrLocalStore, err)
		}
		report.Pulled++
	}

	if report.PullFailed > 0 {
		return nil
	}

	syncedAt := s.now().UTC()
	if err := s.metadata.SetMetadata(ctx, models.MetadataLastSync, syncedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	report.LastSync = &syncedAt

	return nil
}

func (s *synchronizer) list(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.remote.List(callCtx, collection, businessID)
}

func (s *synchronizer) GetStatus(ctx context.Context) (models.SyncStatus, error) {
	status := models.SyncStatus{
		IsOnline: s.monitor.IsOnline(),
		Syncing:  s.syncing.Load(),
	}

	pending, err := s.queue.Count(ctx)
	if err != nil {
		return status, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	status.PendingOperations = pending

	letters, err := s.queue.DeadLetters(ctx)
	if err != nil {
		return status, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	status.DeadLetters = len(letters)

	value, found, err := s.metadata.GetMetadata(ctx, models.MetadataLastSync)
	if err != nil {
		return status, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	if found {
		lastSync, parseErr := time.Parse(time.RFC3339Nano, value)
		if parseErr != nil {
			s.logger.Warn().
				Err(parseErr).
				Str("func", "synchronizer.GetStatus").
				Str("value", value).
				Msg("stored last sync time is unreadable")
		} else {
			status.LastSync = &lastSync
		}
	}

	return status, nil
}
