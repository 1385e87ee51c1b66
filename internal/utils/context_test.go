// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestBusinessIDCtxKey(t *testing.T) {
	if BusinessIDCtxKey.String() != "businessID" {
		t.Errorf("expected 'businessID', got '%s'", BusinessIDCtxKey.String())
	}
}

func TestGetBusinessIDFromContext_Success(t *testing.T) {
	ctx := WithBusinessID(context.Background(), "biz-42")

	businessID, ok := GetBusinessIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if businessID != "biz-42" {
		t.Errorf("expected businessID=biz-42, got %s", businessID)
	}
}

func TestGetBusinessIDFromContext_Missing(t *testing.T) {
	businessID, ok := GetBusinessIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if businessID != "" {
		t.Errorf("expected empty businessID, got %s", businessID)
	}
}

func TestGetBusinessIDFromContext_WrongTypeOrEmpty(t *testing.T) {
	ctx := context.WithValue(context.Background(), BusinessIDCtxKey, 42)
	if _, ok := GetBusinessIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for non-string value")
	}

	ctx = WithBusinessID(context.Background(), "")
	if _, ok := GetBusinessIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty business id")
	}
}

func TestGetTraceIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDCtxKey, "trace-1")

	traceID, ok := GetTraceIDFromContext(ctx)
	if !ok || traceID != "trace-1" {
		t.Fatalf("expected trace-1, got %q (ok=%v)", traceID, ok)
	}
}
