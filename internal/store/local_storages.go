package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// LocalStorages groups the repositories of the on-device store into a
// single value that can be passed around the service layer. All three
// repositories are served by the same engine and share its file.
type LocalStorages struct {
	Collections CollectionRepository
	Queue       QueueRepository
	Metadata    MetadataRepository

	engine localEngine
}

// NewLocalStorages opens the engine selected by cfg.Engine and initializes
// its schema. An engine that cannot be opened or initialized yields an
// error wrapping [ErrLocalStoreUnavailable].
func NewLocalStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*LocalStorages, error) {
	log.Info().
		Str("func", "NewLocalStorages").
		Str("engine", cfg.Engine).
		Str("path", cfg.Path).
		Msg("opening local store...")

	var (
		engine localEngine
		err    error
	)

	switch cfg.Engine {
	case config.EngineBolt:
		engine, err = NewBoltStore(cfg.Path, log)
	case config.EngineSQLite, "":
		engine, err = NewSQLiteStore(ctx, cfg.Path, log)
	default:
		return nil, fmt.Errorf("%w: unsupported engine %q", ErrLocalStoreUnavailable, cfg.Engine)
	}
	if err != nil {
		return nil, err
	}

	storages := newLocalStorages(engine)
	if err := storages.Initialize(ctx); err != nil {
		_ = engine.Close()
		return nil, err
	}

	return storages, nil
}

func newLocalStorages(engine localEngine) *LocalStorages {
	return &LocalStorages{
		Collections: engine,
		Queue:       engine,
		Metadata:    engine,
		engine:      engine,
	}
}

// Initialize declares every store and index. It is safe to call repeatedly.
func (s *LocalStorages) Initialize(ctx context.Context) error {
	if err := s.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLocalStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying database file.
func (s *LocalStorages) Close() error {
	return s.engine.Close()
}
