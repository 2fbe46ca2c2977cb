package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainlog/trainlog/internal/config"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-that-is-long-enough",
		TokenTTL:  7 * 24 * time.Hour,
		Issuer:    "trainlog",
	})
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := newTestTokenManager()

	token, expiresAt, err := m.Issue("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "trainlog", claims.Issuer)
}

func TestTokenManager_DecodableWithSharedSecret(t *testing.T) {
	m := newTestTokenManager()
	token, _, err := m.Issue("user-42")
	require.NoError(t, err)

	parsed := &Claims{}
	_, err = jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (any, error) {
		return []byte("test-secret-that-is-long-enough"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-42", parsed.UserID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := newTestTokenManager()
	valid, _, err := m.Issue("user-1")
	require.NoError(t, err)

	other := NewTokenManager(&config.AuthConfig{JWTSecret: "another-secret-entirely", TokenTTL: time.Hour, Issuer: "trainlog"})
	foreign, _, err := other.Issue("user-1")
	require.NoError(t, err)

	expired := newTestTokenManager()
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	old, _, err := expired.Issue("user-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "trainlog",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "tampered", token: valid + "x"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: old},
		{name: "alg none", token: none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
