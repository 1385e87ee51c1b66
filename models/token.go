package models

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoBusinessInToken is returned by [Claims.Business] when the token does
// not carry a business scope.
var ErrNoBusinessInToken = errors.New("token has no business_id claim")

// Claims is the JWT claim set accepted by the document store.
//
// Tokens are issued by the hosted authentication provider; the document store
// only verifies them. BusinessID scopes every request made with the token:
// a client may only read and write documents of that business.
type Claims struct {
	// BusinessID is the business the bearer is acting for.
	BusinessID string `json:"business_id"`

	jwt.RegisteredClaims
}

// Business returns the business scope of the token.
func (c *Claims) Business() (string, error) {
	if c.BusinessID == "" {
		return "", ErrNoBusinessInToken
	}
	return c.BusinessID, nil
}
