package utils

import (
	"context"
)

type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// BusinessIDCtxKey holds the business scope of an authenticated request.
var BusinessIDCtxKey = contextKey("businessID")

// TraceIDCtxKey holds the trace id assigned to a request.
var TraceIDCtxKey = contextKey("traceID")

// WithBusinessID returns a copy of ctx carrying businessID.
func WithBusinessID(ctx context.Context, businessID string) context.Context {
	return context.WithValue(ctx, BusinessIDCtxKey, businessID)
}

// GetBusinessIDFromContext returns the business scope stored by the auth
// middleware.
func GetBusinessIDFromContext(ctx context.Context) (string, bool) {
	businessID, ok := ctx.Value(BusinessIDCtxKey).(string)
	return businessID, ok && businessID != ""
}

// GetTraceIDFromContext returns the trace id of the request, if any.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
