package workers

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// Workers runs a fixed set of workers together.
type Workers struct {
	workers []Worker
}

// NewWorkers groups ws. Nil workers are skipped.
func NewWorkers(ws ...Worker) *Workers {
	w := &Workers{workers: make([]Worker, 0, len(ws))}
	for _, worker := range ws {
		if worker != nil {
			w.workers = append(w.workers, worker)
		}
	}
	return w
}

// Run starts every worker in its own goroutine and blocks until all of
// them return. The first error cancels the others and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}
	return g.Wait()
}

// Periodic calls job every interval until ctx is done. Job errors are
// logged and do not stop the loop.
type Periodic struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error

	logger *logger.Logger
}

// NewPeriodic creates a Periodic worker. If interval is zero or negative
// it defaults to 5 minutes.
func NewPeriodic(name string, interval time.Duration, job func(ctx context.Context) error, log *logger.Logger) *Periodic {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Periodic{name: name, interval: interval, job: job, logger: log}
}

func (p *Periodic) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := p.job(ctx); err != nil {
				p.logger.Err(err).
					Str("func", "Periodic.Run").
					Str("job", p.name).
					Msg("periodic job failed")
			}
		}
	}
}
