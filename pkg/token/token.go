// Package token is the signed bearer-token primitive: it issues and verifies
// opaque strings carrying a subject id and expiry, integrity-protected by a
// process-wide secret. It has no side effects and no storage; whether a
// token is still honored is the session registry's business.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Manager signs and verifies tokens with a single HS256 secret, injected
// once at construction.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

type claims struct {
	jwt.RegisteredClaims
}

// Issue produces a signed token for the subject, expiring after the
// manager's TTL.
func (m *Manager) Issue(subjectID string) (string, time.Time, error) {
	exp := time.Now().Add(m.ttl)
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Parse verifies the signature and expiry and returns the subject id.
// Returns ErrTokenExpired for a lapsed token and ErrTokenInvalid for
// anything else that fails verification.
func (m *Manager) Parse(tokenStr string) (string, error) {
	c := &claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !tkn.Valid || c.Subject == "" {
		return "", ErrTokenInvalid
	}
	return c.Subject, nil
}
