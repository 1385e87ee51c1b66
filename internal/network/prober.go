package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// HealthProber polls the gRPC health service of the document store and
// feeds the result into a Monitor. SERVING means online; any error or other
// status means offline.
type HealthProber struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	monitor *Monitor

	interval time.Duration
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error

	logger *logger.Logger
}

// NewHealthProber creates a prober for the health service at addr. The
// connection is established lazily, so the remote does not have to be up.
// Extra dial options are appended after the insecure transport credentials.
func NewHealthProber(addr string, interval, timeout time.Duration, monitor *Monitor, log *logger.Logger, opts ...grpc.DialOption) (*HealthProber, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("probe interval must be positive, got %s", interval)
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		log.Err(err).Str("func", "NewHealthProber").Str("addr", addr).Msg("failed to create health client")
		return nil, fmt.Errorf("create health client: %w", err)
	}

	return &HealthProber{
		conn:     conn,
		client:   healthpb.NewHealthClient(conn),
		monitor:  monitor,
		interval: interval,
		timeout:  timeout,
		logger:   log,
	}, nil
}

// Probe performs a single health check and reports it to the monitor.
func (p *HealthProber) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		// остановка агента, а не потеря связи
		return p.monitor.IsOnline()
	}

	online := err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	if err != nil {
		p.logger.Debug().Err(err).Str("func", "HealthProber.Probe").Msg("health check failed")
	}

	p.monitor.SetOnline(online)
	return online
}

// Run probes immediately and then every interval until ctx is done. The
// connection is closed on return.
func (p *HealthProber) Run(ctx context.Context) error {
	defer p.Close()

	p.Probe(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.Probe(ctx)
		}
	}
}

// Close releases the client connection. Only the first call closes it.
func (p *HealthProber) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.conn.Close()
	})
	return p.closeErr
}
