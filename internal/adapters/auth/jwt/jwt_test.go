package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/governance/internal/core/domain"
)

func TestIssueAndVerify(t *testing.T) {
	a, err := NewAuthority("test-secret")
	require.NoError(t, err)

	token, err := a.Issue("alice", 15*time.Minute)
	require.NoError(t, err)

	got, err := a.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("alice"), got)
}

func TestNewAuthorityRequiresSecret(t *testing.T) {
	_, err := NewAuthority("")
	assert.Error(t, err)
}

func TestIssueRequiresAccount(t *testing.T) {
	a, _ := NewAuthority("test-secret")
	_, err := a.Issue("", time.Minute)
	assert.ErrorIs(t, err, domain.ErrMissingIdentity)
}

func TestVerifyRejects(t *testing.T) {
	a, _ := NewAuthority("test-secret")
	other, _ := NewAuthority("other-secret")

	foreign, err := other.Issue("alice", time.Minute)
	require.NoError(t, err)

	expired, err := a.Issue("alice", -time.Minute)
	require.NoError(t, err)

	noExpiry, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"sub": "alice"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"no expiry":    noExpiry,
		"no subject":   noSubject,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
