package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-biz-sync/internal/adapter"
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/network"
	"github.com/MKhiriev/go-biz-sync/internal/service"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/internal/tui"
	"github.com/MKhiriev/go-biz-sync/internal/workers"
)

type App struct {
	cfg config.ClientConfig

	storages *store.LocalStorages
	monitor  *network.Monitor
	prober   *network.HealthProber
	services *service.ClientServices

	out    io.Writer
	logger *logger.Logger
}

// NewApp opens the local store and builds the agent services. Without a
// health endpoint the agent starts online and learns about outages from
// failed remote calls only.
func NewApp(ctx context.Context, cfg *config.ClientConfig, out io.Writer, log *logger.Logger) (*App, error) {
	storages, err := store.NewLocalStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	monitor := network.NewMonitor(cfg.Adapter.GRPCAddress == "", log)

	var prober *network.HealthProber
	if cfg.Adapter.GRPCAddress != "" {
		prober, err = network.NewHealthProber(cfg.Adapter.GRPCAddress, cfg.Workers.ProbeInterval, cfg.Adapter.RequestTimeout, monitor, log)
		if err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create health prober: %w", err)
		}
	}

	return &App{
		cfg:      *cfg,
		storages: storages,
		monitor:  monitor,
		prober:   prober,
		services: service.NewClientServices(storages, remote, monitor, *cfg, log),
		out:      out,
		logger:   log,
	}, nil
}

// Run either prints the sync status and returns, or runs the agent until
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.App.StatusOnly {
		return a.printStatus(ctx)
	}

	a.services.Synchronizer.Start()
	defer a.services.Synchronizer.Dispose()

	if a.prober != nil {
		a.prober.Probe(ctx)
	}
	if _, err := a.services.Synchronizer.SyncNow(ctx); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	jobs := []workers.Worker{a.services.SyncJob, a.services.CleanupJob}
	if a.prober != nil {
		jobs = append(jobs, a.prober)
	}

	a.logger.Info().
		Str("func", "*App.Run").
		Str("business_id", a.services.Synchronizer.BusinessID()).
		Int("workers", len(jobs)).
		Msg("sync agent started")

	if err := workers.NewWorkers(jobs...).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.logger.Info().Str("func", "*App.Run").Msg("sync agent stopped")
	return nil
}

func (a *App) printStatus(ctx context.Context) error {
	if a.prober != nil {
		a.prober.Probe(ctx)
	}
	status, err := a.services.OfflineService.GetSyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}

	_, err = fmt.Fprintln(a.out, tui.RenderStatus(tui.StatusView{
		BusinessID: a.services.Synchronizer.BusinessID(),
		Version:    a.cfg.App.Version,
		Status:     status,
	}))
	return err
}

func (a *App) Close() error {
	var errs []error
	if a.prober != nil {
		errs = append(errs, a.prober.Close())
	}
	errs = append(errs, a.storages.Close())
	return errors.Join(errs...)
}
