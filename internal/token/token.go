// Package token issues and verifies the signed identity tokens handed out
// at register and login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is what a token proves about its bearer.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type claims struct {
	Identity
	jwt.RegisteredClaims
}

// Service signs tokens with HS256. The zero value is not usable; use New.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs id, username and email. The expiry is now + ttl rounded up to
// the next whole second, since exp only carries seconds.
func (s *Service) Issue(id Identity) (string, error) {
	if id.ID == "" {
		return "", fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	now := s.now()
	exp := now.Add(s.ttl)
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		exp = t.Add(time.Second)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the embedded identity.
func (s *Service) Verify(raw string) (Identity, error) {
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
		// expiry dicek manual supaya jam bisa diganti di test
		SkipClaimsValidation: true,
	}
	var c claims
	_, err := parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ExpiresAt == nil || !s.now().Before(c.ExpiresAt.Time) {
		return Identity{}, ErrExpiredToken
	}
	if c.Identity.ID == "" {
		return Identity{}, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return c.Identity, nil
}
