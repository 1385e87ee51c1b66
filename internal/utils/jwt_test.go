package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-biz-sync/models"
)

func TestGenerateJWTToken_Success(t *testing.T) {
	issuer := "test-issuer"
	key := "secret-key"

	signed, err := GenerateJWTToken(issuer, "biz-1", time.Hour, key)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty signed token")
	}

	claims := &models.Claims{}
	if _, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) { return []byte(key), nil }); err != nil {
		t.Fatalf("generated token does not parse: %v", err)
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %s, got %s", issuer, claims.Issuer)
	}
	if claims.BusinessID != "biz-1" {
		t.Errorf("expected business_id 'biz-1', got %s", claims.BusinessID)
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		business string
		duration time.Duration
		key      string
	}{
		{"empty issuer", "", "b", time.Hour, "key"},
		{"empty business", "iss", "", time.Hour, "key"},
		{"zero duration", "iss", "b", 0, "key"},
		{"empty key", "iss", "b", time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, tt.business, tt.duration, tt.key)
			if err == nil {
				t.Error("expected error for invalid parameters, got nil")
			}
		})
	}
}

func TestValidateAndParseJWTToken_Success(t *testing.T) {
	signed, _ := GenerateJWTToken("test-issuer", "biz-456", 5*time.Minute, "secret-key")

	claims, err := ValidateAndParseJWTToken(signed, "secret-key", "test-issuer")
	if err != nil {
		t.Fatalf("expected token to be valid, got error: %v", err)
	}
	if claims.BusinessID != "biz-456" {
		t.Errorf("expected business biz-456, got %s", claims.BusinessID)
	}
}

func TestValidateAndParseJWTToken_InvalidKey(t *testing.T) {
	signed, _ := GenerateJWTToken("test-issuer", "b", time.Hour, "correct-key")

	if _, err := ValidateAndParseJWTToken(signed, "wrong-key", "test-issuer"); err == nil {
		t.Error("expected error due to signature mismatch, got nil")
	}
}

func TestValidateAndParseJWTToken_Expired(t *testing.T) {
	// истёк секунду назад
	signed, _ := GenerateJWTToken("test-issuer", "b", -time.Second, "key")

	_, err := ValidateAndParseJWTToken(signed, "key", "test-issuer")
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateAndParseJWTToken_WrongIssuer(t *testing.T) {
	signed, _ := GenerateJWTToken("real-issuer", "b", time.Hour, "key")

	if _, err := ValidateAndParseJWTToken(signed, "key", "fake-issuer"); err == nil {
		t.Error("expected error for issuer mismatch, got nil")
	}
}

func TestValidateAndParseJWTToken_NoBusiness(t *testing.T) {
	claims := &models.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "iss",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = ValidateAndParseJWTToken(signed, "key", "iss")
	if !errors.Is(err, models.ErrNoBusinessInToken) {
		t.Errorf("expected ErrNoBusinessInToken, got %v", err)
	}
}

func TestValidateAndParseJWTToken_Malformed(t *testing.T) {
	if _, err := ValidateAndParseJWTToken("not.a.token", "key", "iss"); err == nil {
		t.Error("expected error for malformed token string, got nil")
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"  bearer abc  ", "abc", false},
		{"Basic abc", "", true},
		{"Bearer", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestParseBusinessIDFromJWT(t *testing.T) {
	signed, _ := GenerateJWTToken("iss", "biz-9", time.Hour, "key")

	got, err := ParseBusinessIDFromJWT(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "biz-9" {
		t.Errorf("expected biz-9, got %s", got)
	}
}
