package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService mints and verifies the gateway's own session tokens. Tokens
// are stateless: verification is a function of the signature and the embedded
// expiry only, there is no server-side session state.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(config *Config) *TokenService {
	return &TokenService{
		secret: []byte(config.JWTSecret),
		expiry: time.Duration(config.TokenExpiryMinutes) * time.Minute,
		now:    time.Now,
	}
}

// WithNow overrides the clock. Tests use this to cross the expiry boundary
// without sleeping.
func (t *TokenService) WithNow(now func() time.Time) *TokenService {
	t.now = now
	return t
}

// Subject renders the composite subject claim. Absent email or name renders
// as an empty segment.
func Subject(provider string, email, name *string, id string) string {
	return fmt.Sprintf("%s - %s - %s - %s", provider, orEmpty(email), orEmpty(name), id)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Mint signs a session token carrying the composite subject, issued at the
// current instant and expiring after the configured lifetime.
func (t *TokenService) Mint(provider string, email, name *string, id string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   Subject(provider, email, name, id),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify validates the signature and decodes the claims. A structurally
// broken token, a signature mismatch or a non-HMAC algorithm all report
// ErrTokenInvalid; a well-signed token past its expiry reports
// ErrTokenExpired so that callers can prompt a re-login instead of rejecting
// outright.
func (t *TokenService) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
