package utils

import (
	"testing"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("abc"), apperrors.ErrValidation)
	assert.NoError(t, ValidatePassword("abcd"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("other", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := GenerateJWT("user-1", "secret", now, time.Hour, "valutatrade")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := ParseAndValidateJWT(token, "secret", "valutatrade")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseAndValidateJWT_Rejects(t *testing.T) {
	now := time.Now()
	valid, _, err := GenerateJWT("user-1", "secret", now, time.Hour, "valutatrade")
	require.NoError(t, err)
	expired, _, err := GenerateJWT("user-1", "secret", now.Add(-2*time.Hour), time.Hour, "valutatrade")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
		issuer string
	}{
		{name: "wrong secret", token: valid, secret: "other", issuer: "valutatrade"},
		{name: "wrong issuer", token: valid, secret: "secret", issuer: "someone-else"},
		{name: "expired", token: expired, secret: "secret", issuer: "valutatrade"},
		{name: "garbage", token: "not-a-jwt", secret: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidateJWT(tt.token, tt.secret, tt.issuer)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}

	_, err = ParseAndValidateJWT(expired, "secret", "valutatrade")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, _, err := GenerateJWT("user-1", "", time.Now(), time.Hour, "")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
