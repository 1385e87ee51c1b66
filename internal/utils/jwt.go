package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-biz-sync/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWTToken issues an HS256 token scoped to businessID. The document
// store only verifies tokens; issuing is used by operators and tests.
func GenerateJWTToken(issuer, businessID string, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || businessID == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	claims := &models.Claims{
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during singing JWT token: %w", err)
	}

	return tokenString, nil
}

// ValidateAndParseJWTToken verifies the signature, expiry and issuer of
// tokenString and returns its claims. A token without a business scope is
// rejected.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (*models.Claims, error) {
	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if _, err := claims.Business(); err != nil {
		return nil, err
	}

	return claims, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer" value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// ParseBusinessIDFromJWT reads the business scope of a token without
// verifying it. The agent uses it to default its business id.
func ParseBusinessIDFromJWT(tokenString string) (string, error) {
	claims := &models.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", err
	}
	return claims.Business()
}
