// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the HTTP transport. Callers can match against them with
// [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// request carries no "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrForeignBusiness is returned when a request addresses a business
	// other than the one its token is scoped to.
	ErrForeignBusiness = errors.New("request addresses another business")

	// ErrMissingHash is returned when a request body arrives without the
	// HashSHA256 header while integrity checking is enabled.
	ErrMissingHash = errors.New("missing `HashSHA256` header")

	// ErrHashMismatch is returned when the HashSHA256 header does not match
	// the request body.
	ErrHashMismatch = errors.New("integrity check failed")

	// ErrPathIDMismatch is returned when the document id in the body differs
	// from the id in the path.
	ErrPathIDMismatch = errors.New("document id in body does not match path")
)
