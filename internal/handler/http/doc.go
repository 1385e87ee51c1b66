// Package http implements the HTTP transport of the document store.
//
// It exposes the collection routes consumed by the sync agent together with
// the middleware chain in front of them: request tracing, access logging,
// response compression, bearer authentication and body integrity checks.
package http
