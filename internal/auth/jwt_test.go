package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-social/pulse/pkg/config"
)

func newTestService(secret string) *Service {
	return NewService(&config.AuthConfig{
		JWTSecret:  secret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

func TestGenerateTokenPair(t *testing.T) {
	service := newTestService("test-secret-key")

	pair, err := service.GenerateTokenPair(123)

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)
}

func TestValidateAccessToken(t *testing.T) {
	service := newTestService("test-secret-key")

	pair, err := service.GenerateTokenPair(123)
	assert.NoError(t, err)

	claims, err := service.ValidateAccessToken(pair.Access)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	userID, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, int64(123), userID)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	service := newTestService("test-secret-key")

	pair, err := service.GenerateTokenPair(123)
	assert.NoError(t, err)

	_, err = service.ValidateAccessToken(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateRefreshToken(t *testing.T) {
	service := newTestService("test-secret-key")

	pair, err := service.GenerateTokenPair(456)
	assert.NoError(t, err)

	claims, err := service.ValidateRefreshToken(pair.Refresh)
	assert.NoError(t, err)

	userID, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, int64(456), userID)

	// Access tokens must not pass as refresh tokens
	_, err = service.ValidateRefreshToken(pair.Access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	service := newTestService("test-secret-key")

	_, err := service.ValidateAccessToken("invalid-token")
	assert.Error(t, err)

	_, err = service.ValidateAccessToken("")
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	service1 := newTestService("secret-key-1")
	service2 := newTestService("secret-key-2")

	pair, err := service1.GenerateTokenPair(123)
	assert.NoError(t, err)

	_, err = service2.ValidateAccessToken(pair.Access)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := NewService(&config.AuthConfig{
		JWTSecret:  "test-secret-key",
		AccessTTL:  -time.Minute,
		RefreshTTL: time.Hour,
	})

	pair, err := service.GenerateTokenPair(123)
	assert.NoError(t, err)

	_, err = service.ValidateAccessToken(pair.Access)
	assert.Error(t, err)
}
