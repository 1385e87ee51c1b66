package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-biz-sync/internal/service"
	"github.com/MKhiriev/go-biz-sync/internal/store"
	"github.com/MKhiriev/go-biz-sync/internal/validators"
)

// errorStatuses is checked in order and the first matching target wins.
// Retryable failures also wrap a low-level store error. Unknown collections
// also wrap ErrInvalidDataProvided.
var errorStatuses = []struct {
	target error
	status int
}{
	{store.ErrRetryable, http.StatusServiceUnavailable},

	{validators.ErrInvalidCollection, http.StatusNotFound},
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{service.ErrNoBusinessInContext, http.StatusUnauthorized},
	{service.ErrBusinessMismatch, http.StatusForbidden},
	{ErrForeignBusiness, http.StatusForbidden},
	{ErrPathIDMismatch, http.StatusBadRequest},

	{store.ErrDocumentExists, http.StatusConflict},
	{store.ErrDocumentNotFound, http.StatusNotFound},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.target) {
			return candidate.status
		}
	}
	return http.StatusInternalServerError
}
