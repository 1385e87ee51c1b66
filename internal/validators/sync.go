// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-biz-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldID targets the record identifier.
	FieldID = "id"

	// FieldBusinessID targets the owning business of a record, request or
	// operation.
	FieldBusinessID = "business_id"

	// FieldCreatedAt targets the creation timestamp of a record.
	FieldCreatedAt = "created_at"

	// FieldCollection targets the collection of a request or operation.
	FieldCollection = "collection"

	// FieldType targets the mutation kind of a request or operation.
	FieldType = "type"

	// FieldData targets the payload of a request or operation.
	FieldData = "data"

	// FieldOperationID targets the queue identifier of an operation.
	FieldOperationID = "operation_id"

	// FieldRetries targets the retry counters of an operation.
	FieldRetries = "retries"
)

// SyncValidator implements the Validator interface for the offline sync
// models: Record, Collection, QueueRequest and SyncOperation.
type SyncValidator struct {
}

// NewSyncValidator constructs a new SyncValidator and returns it as the
// Validator interface.
func NewSyncValidator() Validator {
	return &SyncValidator{}
}

// Validate dispatches validation by the dynamic type of obj. Both value and
// pointer forms of each supported model are accepted.
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *SyncValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)

	case models.Collection:
		return v.validateCollection(value)

	case models.QueueRequest:
		return v.validateQueueRequest(ctx, value, fields...)
	case *models.QueueRequest:
		return v.validateQueueRequest(ctx, *value, fields...)

	case models.SyncOperation:
		return v.validateOperation(ctx, value, fields...)
	case *models.SyncOperation:
		return v.validateOperation(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncValidator) validateCollection(c models.Collection) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, c)
	}
	return nil
}

// validateRecord validates a single Record.
//
// Default validated fields: ID, BusinessID, CreatedAt.
func (v *SyncValidator) validateRecord(_ context.Context, record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldBusinessID, FieldCreatedAt}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if record.ID == "" {
				return ErrInvalidRecordID
			}
		case FieldBusinessID:
			if record.BusinessID == "" {
				return ErrInvalidBusinessID
			}
		case FieldCreatedAt:
			if record.CreatedAt.IsZero() {
				return ErrInvalidCreatedAt
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateQueueRequest validates a mutation handed over by UI code.
//
// Default validated fields: Type, Collection, BusinessID, Data.
//
// The record must name the request's business when it names one at all.
// Updates must carry at least one changed field.
func (v *SyncValidator) validateQueueRequest(ctx context.Context, request models.QueueRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldType, FieldCollection, FieldBusinessID, FieldData}
	}

	for _, f := range fields {
		switch f {
		case FieldType:
			if !request.Type.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidOperationKind, request.Type)
			}
		case FieldCollection:
			if err := v.validateCollection(request.Collection); err != nil {
				return err
			}
		case FieldBusinessID:
			if request.BusinessID == "" {
				return ErrInvalidBusinessID
			}
			if request.Data.BusinessID != "" && request.Data.BusinessID != request.BusinessID {
				return ErrBusinessMismatch
			}
		case FieldData:
			if err := v.validateRecord(ctx, request.Data, FieldID); err != nil {
				return err
			}
			if request.Type == models.OperationUpdate && len(request.Data.Fields) == 0 {
				return ErrNoFieldsToUpdate
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateOperation validates a queued operation before it is persisted.
//
// Default validated fields: OperationID, Type, Collection, BusinessID, Data,
// Retries.
func (v *SyncValidator) validateOperation(ctx context.Context, op models.SyncOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOperationID, FieldType, FieldCollection, FieldBusinessID, FieldData, FieldRetries}
	}

	for _, f := range fields {
		switch f {
		case FieldOperationID:
			if op.ID == "" {
				return ErrInvalidOperationID
			}
		case FieldType:
			if !op.Kind.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidOperationKind, op.Kind)
			}
		case FieldCollection:
			if err := v.validateCollection(op.Collection); err != nil {
				return err
			}
		case FieldBusinessID:
			if op.BusinessID == "" {
				return ErrInvalidBusinessID
			}
		case FieldData:
			if err := v.validateRecord(ctx, op.Payload, FieldID); err != nil {
				return err
			}
		case FieldRetries:
			if op.Retries < 0 {
				return ErrInvalidRetries
			}
			if op.MaxRetries <= 0 {
				return ErrInvalidMaxRetries
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
