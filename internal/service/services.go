package service

import (
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/store"
)

// Services groups the document store services.
type Services struct {
	DocumentService DocumentService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, cfg config.ServerConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.Version, logger)
	if err != nil {
		return nil, err
	}

	documents := NewDocumentValidationService().Wrap(NewDocumentService(storages.Documents, logger))

	return &Services{
		DocumentService: documents,
		AppInfoService:  appInfo,
	}, nil
}
