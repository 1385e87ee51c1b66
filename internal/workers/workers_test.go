// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount atomic.Int32
	err      error
}

func (m *mockWorker) Run(ctx context.Context) error {
	m.runCount.Add(1)
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return nil
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &mockWorker{}, &mockWorker{}, &mockWorker{}
	ws := NewWorkers(w1, w2, w3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	require.Eventually(t, func() bool {
		return w1.runCount.Load() == 1 && w2.runCount.Load() == 1 && w3.runCount.Load() == 1
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWorkers_Run_Empty(t *testing.T) {
	// Should not block or panic on empty workers list
	assert.NoError(t, NewWorkers().Run(context.Background()))
	assert.NoError(t, (&Workers{}).Run(context.Background()))
}

func TestWorkers_Run_SkipsNil(t *testing.T) {
	ws := NewWorkers(nil, WorkerFunc(func(context.Context) error { return nil }))
	assert.Len(t, ws.workers, 1)
	assert.NoError(t, ws.Run(context.Background()))
}

func TestWorkers_Run_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	waiting := &mockWorker{}
	failing := &mockWorker{err: boom}

	err := NewWorkers(waiting, failing).Run(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), waiting.runCount.Load())
}

func TestPeriodic_RunsJobOnTicker(t *testing.T) {
	var calls atomic.Int32
	p := NewPeriodic("test", 10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	assert.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestPeriodic_JobErrorDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	p := NewPeriodic("failing", 5*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return errors.New("remote down")
	}, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestNewPeriodic_DefaultInterval(t *testing.T) {
	p := NewPeriodic("default", 0, func(context.Context) error { return nil }, logger.Nop())
	assert.Equal(t, 5*time.Minute, p.interval)
}
