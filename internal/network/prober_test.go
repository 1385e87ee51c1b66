package network

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// startHealthServer поднимает gRPC health-сервис в памяти.
func startHealthServer(t *testing.T) (*health.Server, grpc.DialOption) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	return hs, dialer
}

func newTestProber(t *testing.T, m *Monitor, dialer grpc.DialOption, interval time.Duration) *HealthProber {
	t.Helper()
	p, err := NewHealthProber("passthrough:///bufnet", interval, time.Second, m, logger.Nop(), dialer)
	require.NoError(t, err)
	return p
}

func TestNewHealthProber_InvalidInterval(t *testing.T) {
	_, err := NewHealthProber("localhost:1", 0, time.Second, NewMonitor(false, logger.Nop()), logger.Nop())
	assert.Error(t, err)
}

func TestHealthProber_ProbeServing(t *testing.T) {
	_, dialer := startHealthServer(t)
	m := NewMonitor(false, logger.Nop())
	p := newTestProber(t, m, dialer, time.Second)
	defer p.Close()

	reconnected := make(chan struct{}, 1)
	m.OnReconnect(func() { reconnected <- struct{}{} })

	assert.True(t, p.Probe(context.Background()))
	assert.True(t, m.IsOnline())
	assert.Len(t, reconnected, 1)
}

func TestHealthProber_ProbeNotServing(t *testing.T) {
	hs, dialer := startHealthServer(t)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	m := NewMonitor(true, logger.Nop())
	p := newTestProber(t, m, dialer, time.Second)
	defer p.Close()

	assert.False(t, p.Probe(context.Background()))
	assert.False(t, m.IsOnline())
}

func TestHealthProber_ProbeUnreachable(t *testing.T) {
	m := NewMonitor(true, logger.Nop())
	p, err := NewHealthProber("127.0.0.1:1", time.Second, 200*time.Millisecond, m, logger.Nop())
	require.NoError(t, err)
	defer p.Close()

	assert.False(t, p.Probe(context.Background()))
	assert.False(t, m.IsOnline())
}

func TestHealthProber_RunTracksStatusChanges(t *testing.T) {
	hs, dialer := startHealthServer(t)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	m := NewMonitor(true, logger.Nop())
	p := newTestProber(t, m, dialer, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, m.IsOnline(), "shutdown must not be reported as going offline")
}

func TestHealthProber_CloseAfterRun(t *testing.T) {
	_, dialer := startHealthServer(t)
	p := newTestProber(t, NewMonitor(false, logger.Nop()), dialer, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	// Run уже закрыл соединение, повторное закрытие не ошибка
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
