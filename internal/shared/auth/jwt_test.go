package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTValidatorAcceptsPortalClaims(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	validator := NewJWTValidator("secret")
	validator.now = func() time.Time { return now }

	token := signToken(t, "secret", Claims{
		Host:   "N2CMw0HGQXeLvC1wBfln2A",
		Email:  "admin@lightapi.net",
		UserID: "utgdG50vRVOX3mL1Kf83aA",
		Roles:  []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin@lightapi.net",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	claims, err := validator.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Host != "N2CMw0HGQXeLvC1wBfln2A" {
		t.Fatalf("unexpected host: %s", claims.Host)
	}
	if claims.User() != "utgdG50vRVOX3mL1Kf83aA" {
		t.Fatalf("unexpected user: %s", claims.User())
	}
	if claims.SessionID == "" {
		t.Fatal("expected derived session id")
	}
}

func TestJWTValidatorRejectsExpiredAndMissing(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	validator := NewJWTValidator("secret")
	validator.now = func() time.Time { return now }

	if _, err := validator.Validate("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	expired := signToken(t, "secret", Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}})
	if _, err := validator.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	wrongKey := signToken(t, "other", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user"}})
	if _, err := validator.Validate(wrongKey); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}
}

func TestJWTValidatorRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	publicPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	validator, err := NewJWTValidatorWithPublicKey("secret", publicPEM)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "u1",
		ID:      "jti-1",
	}}).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := validator.Validate(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SessionID != "jti-1" {
		t.Fatalf("expected session from jti, got %q", claims.SessionID)
	}

	// The shared secret is not accepted once a public key is configured.
	hmac := signToken(t, "secret", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	if _, err := validator.Validate(hmac); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS256 token, got %v", err)
	}

	if _, err := NewJWTValidatorWithPublicKey("", "not a pem"); err == nil {
		t.Fatal("expected error for malformed public key")
	}
}

func TestJWTValidatorWithoutKey(t *testing.T) {
	token := signToken(t, "secret", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	if _, err := NewJWTValidator("").Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractTokenOrder(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/views/roles?token=from-query", nil)
	req.AddCookie(&http.Cookie{Name: DefaultTokenCookie, Value: "from-cookie"})
	if got := ExtractToken(req, "", ""); got != "from-query" {
		t.Fatalf("expected query token, got %q", got)
	}

	req.Header.Set("Authorization", "bearer from-header")
	if got := ExtractToken(req, "", ""); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}

	cookieOnly := httptest.NewRequest(http.MethodGet, "/ws/views/roles", nil)
	cookieOnly.AddCookie(&http.Cookie{Name: DefaultTokenCookie, Value: "from-cookie"})
	if got := ExtractToken(cookieOnly, "", ""); got != "from-cookie" {
		t.Fatalf("expected cookie token, got %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"  bearer  x ": "x",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		if got := BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
