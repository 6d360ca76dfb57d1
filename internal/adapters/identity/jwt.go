// Package identity implements core.Identity with HS256 JWTs: a
// short-lived login idToken is exchanged for a 5-day session token, and
// session tokens verify back into a subject id.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

const (
	sessionTTL = 5 * 24 * time.Hour
	idTokenTTL = 5 * time.Minute
)

type Provider struct {
	secret []byte
}

func New(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

// CreateSessionToken verifies the login idToken and issues the session
// token the browser keeps for 5 days.
func (p *Provider) CreateSessionToken(ctx context.Context, idToken string) (string, error) {
	sub, err := p.verify(idToken)
	if err != nil {
		return "", err
	}
	return p.sign(sub, sessionTTL)
}

// VerifyCredential validates a presented session token and returns the
// subject it was issued to.
func (p *Provider) VerifyCredential(ctx context.Context, token string) (domain.UserID, error) {
	sub, err := p.verify(token)
	if err != nil {
		return "", err
	}
	return domain.UserID(sub), nil
}

// MintIDToken issues a short-lived login token for a subject. The login
// frontend calls this after checking the account password.
func (p *Provider) MintIDToken(id domain.UserID) (string, error) {
	return p.sign(string(id), idTokenTTL)
}

func (p *Provider) sign(sub string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := t.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *Provider) verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", core.ErrUnauthorized
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", core.ErrUnauthorized
	}
	return sub, nil
}
