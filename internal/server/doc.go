// Package server runs the transports of the document store.
//
// It binds the HTTP and gRPC listeners, serves them together and shuts both
// down gracefully on a stop signal or when either transport fails.
package server
