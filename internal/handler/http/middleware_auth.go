package http

import (
	"net/http"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
)

// auth enforces bearer authentication.
//
// The token must be an HS256 JWT signed with the configured key, issued by
// the configured issuer and carrying a business_id claim. The business is
// stored in the request context under [utils.BusinessIDCtxKey]. A request
// whose business_id query parameter names another business is rejected with
// 403 Forbidden; every other failure yields 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Str("func", "*Handler.auth").Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Msg("malformed authorization header")
			utils.WriteError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateAndParseJWTToken(tokenString, h.authCfg.TokenSignKey, h.authCfg.TokenIssuer)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Msg("token rejected")
			utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if requested := r.URL.Query().Get("business_id"); requested != "" && requested != claims.BusinessID {
			log.Warn().
				Str("func", "*Handler.auth").
				Str("business_id", claims.BusinessID).
				Str("requested_business_id", requested).
				Msg("request for another business")
			utils.WriteError(w, ErrForeignBusiness.Error(), http.StatusForbidden)
			return
		}

		ctx := utils.WithBusinessID(r.Context(), claims.BusinessID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
