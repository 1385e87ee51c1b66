package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/models"
)

type staticIDs struct {
	id string
}

func (g staticIDs) Generate() string {
	return g.id
}

func testClientConfig() config.ClientConfig {
	return config.ClientConfig{
		Queue:   config.ClientQueue{MaxRetries: 4},
		Storage: config.ClientStorage{Retention: 30 * 24 * time.Hour},
	}
}

func (f *syncFixture) offline(businessID string) (*offlineService, *synchronizer) {
	s := f.synchronizer(businessID, time.Second)
	o := NewOfflineService(f.storages(), s, f.monitor, staticIDs{id: "op-1"}, testClientConfig(), logger.Nop()).(*offlineService)
	o.now = func() time.Time { return fixedNow }
	return o, s
}

// ─────────────────────────────────────────────
// AddToSyncQueue
// ─────────────────────────────────────────────

func TestAddToSyncQueue_CreateEnqueuesThenUpdatesCache(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	request := models.QueueRequest{
		Type:       models.OperationCreate,
		Collection: models.Sales,
		BusinessID: testBusiness,
		Data:       models.Record{ID: "sale-1", Fields: models.Fields{"total": 10.5}},
	}
	want := models.SyncOperation{
		ID:         "op-1",
		Kind:       models.OperationCreate,
		Collection: models.Sales,
		BusinessID: testBusiness,
		Payload: models.Record{
			ID:         "sale-1",
			BusinessID: testBusiness,
			Fields:     models.Fields{"total": 10.5},
			CreatedAt:  fixedNow,
		},
		CreatedAt:  fixedNow,
		MaxRetries: 4,
	}

	gomock.InOrder(
		f.queue.EXPECT().Enqueue(gomock.Any(), want).Return(nil),
		f.collections.EXPECT().UpsertRecord(gomock.Any(), models.Sales, want.Payload).Return(nil),
	)

	op, err := o.AddToSyncQueue(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, want, op)
}

func TestAddToSyncQueue_UpdateKeepsPartialPayload(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	request := models.QueueRequest{
		Type:       models.OperationUpdate,
		Collection: models.Products,
		BusinessID: testBusiness,
		Data:       models.Record{ID: "p-1", Fields: models.Fields{"price": 3}},
	}

	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.SyncOperation) error {
			assert.Equal(t, models.OperationUpdate, op.Kind)
			assert.True(t, op.Payload.CreatedAt.IsZero(), "update must not invent a creation time")
			assert.Equal(t, models.Fields{"price": 3}, op.Payload.Fields)
			return nil
		})
	f.collections.EXPECT().UpsertRecord(gomock.Any(), models.Products, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Collection, record models.Record) error {
			// кэш получает время создания, очередь нет
			assert.Equal(t, fixedNow, record.CreatedAt)
			return nil
		})

	_, err := o.AddToSyncQueue(context.Background(), request)

	require.NoError(t, err)
}

func TestAddToSyncQueue_DeleteRemovesFromCache(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	gomock.InOrder(
		f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil),
		f.collections.EXPECT().DeleteRecord(gomock.Any(), models.Clients, "c-1").Return(nil),
	)

	op, err := o.AddToSyncQueue(context.Background(), models.QueueRequest{
		Type:       models.OperationDelete,
		Collection: models.Clients,
		BusinessID: testBusiness,
		Data:       models.Record{ID: "c-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.OperationDelete, op.Kind)
}

func TestAddToSyncQueue_DefaultsBusinessFromScope(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline("biz-scope")

	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.SyncOperation) error {
			assert.Equal(t, "biz-scope", op.BusinessID)
			assert.Equal(t, "biz-scope", op.Payload.BusinessID)
			return nil
		})
	f.collections.EXPECT().DeleteRecord(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := o.AddToSyncQueue(context.Background(), models.QueueRequest{
		Type:       models.OperationDelete,
		Collection: models.Employees,
		Data:       models.Record{ID: "e-1"},
	})

	require.NoError(t, err)
}

func TestAddToSyncQueue_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		request models.QueueRequest
	}{
		{
			name:    "unknown kind",
			request: models.QueueRequest{Type: "upsert", Collection: models.Sales, BusinessID: testBusiness, Data: models.Record{ID: "1"}},
		},
		{
			name:    "unknown collection",
			request: models.QueueRequest{Type: models.OperationCreate, Collection: "invoices", BusinessID: testBusiness, Data: models.Record{ID: "1"}},
		},
		{
			name:    "no record id",
			request: models.QueueRequest{Type: models.OperationCreate, Collection: models.Sales, BusinessID: testBusiness},
		},
		{
			name:    "update without fields",
			request: models.QueueRequest{Type: models.OperationUpdate, Collection: models.Sales, BusinessID: testBusiness, Data: models.Record{ID: "1"}},
		},
		{
			name: "foreign record",
			request: models.QueueRequest{
				Type: models.OperationCreate, Collection: models.Sales, BusinessID: testBusiness,
				Data: models.Record{ID: "1", BusinessID: "other"},
			},
		},
		{
			name:    "no business at all",
			request: models.QueueRequest{Type: models.OperationDelete, Collection: models.Sales, Data: models.Record{ID: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, false)
			o, _ := f.offline("")

			_, err := o.AddToSyncQueue(context.Background(), tt.request)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDataProvided)
		})
	}
}

func TestAddToSyncQueue_EnqueueFailureLeavesCacheUntouched(t *testing.T) {
	f := newSyncFixture(t, true)
	o, _ := f.offline(testBusiness)

	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	// UpsertRecord не ожидается

	_, err := o.AddToSyncQueue(context.Background(), models.QueueRequest{
		Type: models.OperationCreate, Collection: models.Sales, BusinessID: testBusiness,
		Data: models.Record{ID: "1"},
	})

	assert.ErrorIs(t, err, ErrLocalStore)
}

func TestAddToSyncQueue_OptimisticFailureKeepsOperation(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
	f.collections.EXPECT().UpsertRecord(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("locked"))

	op, err := o.AddToSyncQueue(context.Background(), models.QueueRequest{
		Type: models.OperationCreate, Collection: models.Sales, BusinessID: testBusiness,
		Data: models.Record{ID: "1"},
	})

	assert.ErrorIs(t, err, ErrLocalStore)
	assert.Equal(t, "op-1", op.ID)
}

func TestAddToSyncQueue_OnlineTriggersBackgroundSync(t *testing.T) {
	f := newSyncFixture(t, true)
	o, s := f.offline("")
	s.Start()
	defer s.Dispose()

	synced := make(chan struct{})
	f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
	f.collections.EXPECT().UpsertRecord(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.queue.EXPECT().PeekAll(gomock.Any()).
		DoAndReturn(func(context.Context) ([]models.SyncOperation, error) {
			close(synced)
			return nil, nil
		})

	_, err := o.AddToSyncQueue(context.Background(), models.QueueRequest{
		Type: models.OperationCreate, Collection: models.Sales, BusinessID: testBusiness,
		Data: models.Record{ID: "1"},
	})
	require.NoError(t, err)

	select {
	case <-synced:
	case <-time.After(time.Second):
		t.Fatal("expected a background sync after enqueue")
	}
}

// ─────────────────────────────────────────────
// CleanupExpiredData
// ─────────────────────────────────────────────

func TestCleanupExpiredData_SumsAllCollections(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	cutoff := fixedNow.Add(-30 * 24 * time.Hour)
	for i, c := range models.TrackedCollections {
		f.collections.EXPECT().DeleteOlderThan(gomock.Any(), c, cutoff).Return(int64(i+1), nil)
	}

	removed, err := o.CleanupExpiredData(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1+2+3+4), removed)
}

func TestCleanupExpiredData_StopsOnError(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)

	first := models.TrackedCollections[0]
	second := models.TrackedCollections[1]
	f.collections.EXPECT().DeleteOlderThan(gomock.Any(), first, gomock.Any()).Return(int64(2), nil)
	f.collections.EXPECT().DeleteOlderThan(gomock.Any(), second, gomock.Any()).Return(int64(0), errors.New("io"))

	removed, err := o.CleanupExpiredData(context.Background())

	assert.ErrorIs(t, err, ErrLocalStore)
	assert.Equal(t, int64(2), removed)
}

// ─────────────────────────────────────────────
// pass-through
// ─────────────────────────────────────────────

func TestOfflineService_PassThrough(t *testing.T) {
	f := newSyncFixture(t, false)
	o, _ := f.offline(testBusiness)
	ctx := context.Background()

	records := []models.Record{{ID: "1", BusinessID: testBusiness, CreatedAt: fixedNow}}
	letters := []models.DeadLetter{{Reason: "boom"}}

	f.collections.EXPECT().ReplaceCollection(ctx, models.Products, records).Return(nil)
	f.collections.EXPECT().ReadCollection(ctx, models.Products, testBusiness).Return(records, nil)
	f.queue.EXPECT().DeadLetters(ctx).Return(letters, nil)
	f.queue.EXPECT().PurgeDeadLetters(ctx).Return(int64(1), nil)

	require.NoError(t, o.SaveOfflineData(ctx, models.Products, records))

	got, err := o.GetOfflineData(ctx, models.Products, testBusiness)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	gotLetters, err := o.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Equal(t, letters, gotLetters)

	purged, err := o.PurgeDeadLetters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	assert.False(t, o.IsOnline())

	report, err := o.SyncOfflineData(ctx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	o.SetBusinessID("biz-9")
	assert.Equal(t, "biz-9", o.synchronizer.BusinessID())
}
