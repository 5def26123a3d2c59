package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

const clockSkew = 5 * time.Second

// Claims mirrors the portal session token. Host is the tenant the user is
// signed into; it may be empty right after login, before a host is picked.
type Claims struct {
	SessionID string   `json:"sid"`
	Host      string   `json:"host"`
	Email     string   `json:"eml"`
	UserID    string   `json:"uid"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// User returns the portal user id, falling back to the token subject.
func (c *Claims) User() string {
	if c == nil {
		return ""
	}
	if id := strings.TrimSpace(c.UserID); id != "" {
		return id
	}
	return strings.TrimSpace(c.Subject)
}

// session returns the sid claim, then the jti, then an id derived from the
// user and expiry so reconnects of one login share a session.
func (c *Claims) session() string {
	switch {
	case c.SessionID != "":
		return c.SessionID
	case c.ID != "":
		return c.ID
	case c.ExpiresAt != nil:
		return fmt.Sprintf("%s:%d", c.User(), c.ExpiresAt.Unix())
	default:
		return c.User()
	}
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// JWTValidator checks portal tokens: RS256 when a public key is configured,
// HS256 with the shared secret otherwise.
type JWTValidator struct {
	secret    []byte
	publicKey *rsa.PublicKey
	now       func() time.Time
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

// NewJWTValidatorWithPublicKey prefers RS256 when publicKeyPEM is set.
func NewJWTValidatorWithPublicKey(secret, publicKeyPEM string) (*JWTValidator, error) {
	v := NewJWTValidator(secret)
	if pem := strings.TrimSpace(publicKeyPEM); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		v.publicKey = key
	}
	return v, nil
}

func (v *JWTValidator) key() (any, []string, error) {
	switch {
	case v.publicKey != nil:
		return v.publicKey, []string{jwt.SigningMethodRS256.Alg()}, nil
	case len(v.secret) > 0:
		return v.secret, []string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}, nil
	default:
		return nil, nil, fmt.Errorf("%w: jwt key not configured", ErrInvalidToken)
	}
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	key, methods, err := v.key()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.User() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims.SessionID = claims.session()
	return claims, nil
}

var _ TokenValidator = (*JWTValidator)(nil)
