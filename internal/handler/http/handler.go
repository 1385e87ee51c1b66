package http

import (
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/service"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
)

type Handler struct {
	services *service.Services

	authCfg config.ServerAuth
	hasher  *utils.Hasher

	logger *logger.Logger
}

func NewHandler(services *service.Services, auth config.ServerAuth, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		authCfg:  auth,
		hasher:   utils.NewHasher(auth.HashKey),
		logger:   logger,
	}
}
