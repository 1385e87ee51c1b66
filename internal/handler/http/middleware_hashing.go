package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
)

// withHashing verifies the HashSHA256 header of request bodies and signs
// response bodies with the same key. It is a no-op when no hash key is
// configured.
func (h *Handler) withHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.hasher.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		if r.Body != nil {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				log.Err(err).Str("func", "*Handler.withHashing").Msg("failed to read request body")
				utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			// restore request body
			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 {
				hash := r.Header.Get(utils.HashHeader)
				if hash == "" {
					log.Error().Str("func", "*Handler.withHashing").Msg("body without hash")
					utils.WriteError(w, ErrMissingHash.Error(), http.StatusBadRequest)
					return
				}
				if !h.hasher.Verify(body, hash) {
					log.Error().
						Str("func", "*Handler.withHashing").
						Str("hash from request", hash).
						Msg("hashes are not equal")
					utils.WriteError(w, ErrHashMismatch.Error(), http.StatusBadRequest)
					return
				}
			}
		}

		hw := &hashingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(hw, r)
		hw.flush(h.hasher)
	})
}

// hashingResponseWriter holds the response back until the whole body is
// known so the hash header can precede it.
type hashingResponseWriter struct {
	http.ResponseWriter

	status int
	body   bytes.Buffer
}

func (w *hashingResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *hashingResponseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *hashingResponseWriter) flush(hasher *utils.Hasher) {
	if w.body.Len() > 0 {
		w.Header().Set(utils.HashHeader, hasher.HashHex(w.body.Bytes()))
	}
	w.ResponseWriter.WriteHeader(w.status)
	_, _ = w.ResponseWriter.Write(w.body.Bytes())
}
