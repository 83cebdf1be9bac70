package service

import (
	"context"
	"testing"
	"time"

	"promo-order-bot/config"
	"promo-order-bot/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher()

	encoded, err := h.Hash("s3cret-password")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := h.Verify("s3cret-password", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := NewArgon2Hasher()

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_RejectsGarbage(t *testing.T) {
	h := NewArgon2Hasher()

	for _, bad := range []string{"", "plaintext", "$bcrypt$whatever", "$argon2id$v=19$bad"} {
		_, err := h.Verify("password", bad)
		assert.Error(t, err)
	}
}

func adminConfig(t *testing.T) config.AdminConfig {
	t.Helper()
	hash, err := NewArgon2Hasher().Hash("correct-horse")
	require.NoError(t, err)
	return config.AdminConfig{
		Username:     "admin",
		PasswordHash: hash,
		JWTSecret:    "test-secret-key-for-signing",
		JWTExpiry:    time.Hour,
		JWTIssuer:    "promo-order-bot",
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(adminConfig(t))

	token, expiresAt, err := svc.Generate("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	cfg := adminConfig(t)
	svc := NewJWTService(cfg)

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := cfg
	other.JWTSecret = "another-secret-entirely"
	foreign, _, err := NewJWTService(other).Generate("admin")
	require.NoError(t, err)
	_, err = svc.Validate(foreign)
	assert.Error(t, err)

	// Expired token.
	expired := cfg
	expired.JWTExpiry = -time.Minute
	stale, _, err := NewJWTService(expired).Generate("admin")
	require.NoError(t, err)
	_, err = svc.Validate(stale)
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	cfg := adminConfig(t)
	svc := NewAuthService(cfg, NewArgon2Hasher(), NewJWTService(cfg), zerolog.Nop())

	token, expiresAt, err := svc.Login(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	cfg := adminConfig(t)
	svc := NewAuthService(cfg, NewArgon2Hasher(), NewJWTService(cfg), zerolog.Nop())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "battery-staple"},
		{"wrong username", "root", "correct-horse"},
		{"both wrong", "root", "battery-staple"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.username, tt.password)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "AUTH_001", appErr.Code)
		})
	}
}
