package server

import "context"

// Server defines the lifecycle contract of the transport servers managed by
// this package.
type Server interface {
	// RunServer serves until SIGINT, SIGTERM or SIGQUIT and shuts down
	// gracefully.
	RunServer()

	// Run serves until ctx is done or a transport fails, then shuts every
	// transport down.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
