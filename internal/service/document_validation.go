package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-biz-sync/internal/utils"
	"github.com/MKhiriev/go-biz-sync/internal/validators"
	"github.com/MKhiriev/go-biz-sync/models"
)

// DocumentValidationService checks inbound documents before they reach the
// wrapped DocumentService.
type DocumentValidationService struct {
	inner     DocumentService
	validator validators.Validator
}

func NewDocumentValidationService() DocumentServiceWrapper {
	return &DocumentValidationService{
		validator: validators.NewSyncValidator(),
	}
}

func (v *DocumentValidationService) Wrap(inner DocumentService) DocumentService {
	v.inner = inner
	return v
}

func (v *DocumentValidationService) List(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	if err := v.validator.Validate(ctx, collection); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.List(ctx, collection)
}

func (v *DocumentValidationService) Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	if err := v.validate(ctx, collection, record); err != nil {
		return models.Record{}, err
	}
	return v.inner.Insert(ctx, collection, record)
}

func (v *DocumentValidationService) Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	if err := v.validate(ctx, collection, record); err != nil {
		return models.Record{}, err
	}
	return v.inner.Merge(ctx, collection, record)
}

func (v *DocumentValidationService) Delete(ctx context.Context, collection models.Collection, id string) error {
	if err := v.validator.Validate(ctx, collection); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidRecordID)
	}
	return v.inner.Delete(ctx, collection, id)
}

// validate checks the collection, the record id and that the record does
// not name a business other than the caller's.
func (v *DocumentValidationService) validate(ctx context.Context, collection models.Collection, record models.Record) error {
	if err := v.validator.Validate(ctx, collection); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err := v.validator.Validate(ctx, record, validators.FieldID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	businessID, ok := utils.GetBusinessIDFromContext(ctx)
	if !ok {
		return ErrNoBusinessInContext
	}
	if record.BusinessID != "" && record.BusinessID != businessID {
		return ErrBusinessMismatch
	}

	return nil
}
