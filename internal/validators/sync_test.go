// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-biz-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validRecord() models.Record {
	return models.Record{
		ID:         "rec-1",
		BusinessID: "biz-1",
		Fields:     models.Fields{"name": "Coffee"},
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func validQueueRequest() models.QueueRequest {
	return models.QueueRequest{
		Type:       models.OperationCreate,
		Collection: models.Products,
		Data:       validRecord(),
		BusinessID: "biz-1",
	}
}

func validOperation() models.SyncOperation {
	return models.SyncOperation{
		ID:         "op-1",
		Kind:       models.OperationUpdate,
		Collection: models.Sales,
		BusinessID: "biz-1",
		Payload:    validRecord(),
		MaxRetries: models.DefaultMaxRetries,
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestNewSyncValidator(t *testing.T) {
	require.NotNil(t, NewSyncValidator())
}

func TestValidate_Dispatch(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		require.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
	})

	t.Run("record value and pointer", func(t *testing.T) {
		r := validRecord()
		require.NoError(t, v.Validate(ctx, r))
		require.NoError(t, v.Validate(ctx, &r))
	})

	t.Run("queue request value and pointer", func(t *testing.T) {
		req := validQueueRequest()
		require.NoError(t, v.Validate(ctx, req))
		require.NoError(t, v.Validate(ctx, &req))
	})

	t.Run("operation value and pointer", func(t *testing.T) {
		op := validOperation()
		require.NoError(t, v.Validate(ctx, op))
		require.NoError(t, v.Validate(ctx, &op))
	})

	t.Run("collection", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, models.Employees))
		require.ErrorIs(t, v.Validate(ctx, models.Collection("orders")), ErrInvalidCollection)
	})
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestValidate_Record(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *models.Record)
		fields  []string
		wantErr error
	}{
		{name: "valid", mutate: func(*models.Record) {}},
		{name: "empty id", mutate: func(r *models.Record) { r.ID = "" }, wantErr: ErrInvalidRecordID},
		{name: "empty business", mutate: func(r *models.Record) { r.BusinessID = "" }, wantErr: ErrInvalidBusinessID},
		{name: "zero created at", mutate: func(r *models.Record) { r.CreatedAt = time.Time{} }, wantErr: ErrInvalidCreatedAt},
		{
			name:   "zero created at ignored when not requested",
			mutate: func(r *models.Record) { r.CreatedAt = time.Time{} },
			fields: []string{FieldID, FieldBusinessID},
		},
		{name: "unknown field", mutate: func(*models.Record) {}, fields: []string{"color"}, wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := v.Validate(ctx, r, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// QueueRequest
// ---------------------------------------------------------------------------

func TestValidate_QueueRequest(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *models.QueueRequest)
		wantErr error
	}{
		{name: "valid create", mutate: func(*models.QueueRequest) {}},
		{
			name: "valid delete with id only",
			mutate: func(r *models.QueueRequest) {
				r.Type = models.OperationDelete
				r.Data = models.Record{ID: "rec-1"}
			},
		},
		{name: "unknown type", mutate: func(r *models.QueueRequest) { r.Type = "upsert" }, wantErr: ErrInvalidOperationKind},
		{name: "unknown collection", mutate: func(r *models.QueueRequest) { r.Collection = "orders" }, wantErr: ErrInvalidCollection},
		{name: "empty business", mutate: func(r *models.QueueRequest) { r.BusinessID = "" }, wantErr: ErrInvalidBusinessID},
		{name: "foreign record", mutate: func(r *models.QueueRequest) { r.Data.BusinessID = "biz-2" }, wantErr: ErrBusinessMismatch},
		{name: "missing record id", mutate: func(r *models.QueueRequest) { r.Data.ID = "" }, wantErr: ErrInvalidRecordID},
		{
			name: "update without fields",
			mutate: func(r *models.QueueRequest) {
				r.Type = models.OperationUpdate
				r.Data.Fields = nil
			},
			wantErr: ErrNoFieldsToUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validQueueRequest()
			tt.mutate(&r)

			err := v.Validate(ctx, r)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// SyncOperation
// ---------------------------------------------------------------------------

func TestValidate_Operation(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(op *models.SyncOperation)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.SyncOperation) {}},
		{name: "empty id", mutate: func(op *models.SyncOperation) { op.ID = "" }, wantErr: ErrInvalidOperationID},
		{name: "bad kind", mutate: func(op *models.SyncOperation) { op.Kind = "" }, wantErr: ErrInvalidOperationKind},
		{name: "bad collection", mutate: func(op *models.SyncOperation) { op.Collection = "" }, wantErr: ErrInvalidCollection},
		{name: "empty business", mutate: func(op *models.SyncOperation) { op.BusinessID = "" }, wantErr: ErrInvalidBusinessID},
		{name: "empty payload id", mutate: func(op *models.SyncOperation) { op.Payload.ID = "" }, wantErr: ErrInvalidRecordID},
		{name: "negative retries", mutate: func(op *models.SyncOperation) { op.Retries = -1 }, wantErr: ErrInvalidRetries},
		{name: "zero max retries", mutate: func(op *models.SyncOperation) { op.MaxRetries = 0 }, wantErr: ErrInvalidMaxRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := validOperation()
			tt.mutate(&op)

			err := v.Validate(ctx, op)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
