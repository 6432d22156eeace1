package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TempTokenTTL is the fixed lifetime of 2FA-pending tokens. It is deliberately
// not configurable and independent of the session expiry.
const TempTokenTTL = 10 * time.Minute

// ErrInvalidToken is returned for every verification failure. Expired,
// tampered and malformed tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims holds the JWT payload fields.
// Temp marks 2FA-pending tokens, which are valid only for the second login
// step and rejected everywhere else.
type Claims struct {
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Temp          bool   `json:"temp,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string { return c.Subject }

// Provider signs and verifies HS256 JWTs with a shared secret.
type Provider struct {
	secret        []byte
	sessionExpiry time.Duration
}

// NewProvider builds a Provider from an explicit secret and session expiry.
// The secret is injected here rather than read from ambient state so tests
// and callers control it directly.
func NewProvider(secret string, sessionExpiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if sessionExpiry <= 0 {
		sessionExpiry = 24 * time.Hour
	}
	return &Provider{secret: []byte(secret), sessionExpiry: sessionExpiry}, nil
}

// SignTemp issues a 2FA-pending token for the given user, valid 10 minutes.
func (p *Provider) SignTemp(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Temp:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(TempTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// SignSession issues a full session token carrying role and verification
// claims, valid for the configured session expiry.
func (p *Provider) SignSession(userID, email, role string, emailVerified bool) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:         email,
		Role:          role,
		EmailVerified: emailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify parses and validates a token of either kind.
// All failures collapse into ErrInvalidToken.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
