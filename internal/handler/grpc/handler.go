// Package grpc implements the gRPC transport of the document store: the
// standard health service the sync agent probes to decide whether it is
// online.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// ServiceName is the health service name reported for the document store.
// The empty name reports the whole server.
const ServiceName = "bizsync.DocumentStore"

// Handler is the root gRPC transport handler.
type Handler struct {
	health *health.Server

	logger *logger.Logger
}

// NewHandler constructs a Handler reporting SERVING for the server and
// for [ServiceName].
func NewHandler(logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := &Handler{
		health: health.NewServer(),
		logger: logger,
	}
	h.SetServing(true)

	return h
}

// Register attaches the handler's services to s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(s, h.health)
}

// SetServing switches the reported health status.
func (h *Handler) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Shutdown reports NOT_SERVING to every watcher and ignores later updates.
func (h *Handler) Shutdown() {
	h.logger.Info().Msg("gRPC health service shutting down")
	h.health.Shutdown()
}
