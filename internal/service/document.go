package service

import (
	"context"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
	"github.com/MKhiriev/go-biz-sync/models"
)

type documentService struct {
	documents store.DocumentRepository

	logger *logger.Logger
}

func NewDocumentService(documents store.DocumentRepository, logger *logger.Logger) DocumentService {
	return &documentService{
		documents: documents,
		logger:    logger,
	}
}

func (d *documentService) List(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	businessID, ok := utils.GetBusinessIDFromContext(ctx)
	if !ok {
		return nil, ErrNoBusinessInContext
	}
	return d.documents.List(ctx, collection, businessID)
}

func (d *documentService) Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	businessID, ok := utils.GetBusinessIDFromContext(ctx)
	if !ok {
		return models.Record{}, ErrNoBusinessInContext
	}
	record.BusinessID = businessID
	return d.documents.Insert(ctx, collection, record)
}

func (d *documentService) Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	businessID, ok := utils.GetBusinessIDFromContext(ctx)
	if !ok {
		return models.Record{}, ErrNoBusinessInContext
	}
	record.BusinessID = businessID
	return d.documents.Merge(ctx, collection, record)
}

func (d *documentService) Delete(ctx context.Context, collection models.Collection, id string) error {
	businessID, ok := utils.GetBusinessIDFromContext(ctx)
	if !ok {
		return ErrNoBusinessInContext
	}
	return d.documents.Delete(ctx, collection, businessID, id)
}
