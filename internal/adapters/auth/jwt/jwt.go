// Package jwt signs and verifies caller access tokens. The subject claim
// carries the caller's account id.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/governance/internal/core/domain"
)

var ErrInvalidToken = errors.New("invalid access token")

type Authority struct {
	secret []byte
	now    func() time.Time
}

func NewAuthority(secret string) (*Authority, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authority{secret: []byte(secret), now: time.Now}, nil
}

func (a *Authority) Issue(account domain.AccountID, ttl time.Duration) (string, error) {
	if account == "" {
		return "", domain.ErrMissingIdentity
	}
	now := a.now()
	claims := gojwt.RegisteredClaims{
		Subject:   string(account),
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authority) Verify(ctx context.Context, token string) (domain.AccountID, error) {
	claims := &gojwt.RegisteredClaims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (any, error) {
		return a.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return domain.AccountID(claims.Subject), nil
}
