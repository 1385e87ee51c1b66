package handler

import (
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-biz-sync/internal/handler/http"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

func NewHandlers(services *service.Services, cfg config.ServerConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg.Auth, logger)
	}
	if cfg.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
