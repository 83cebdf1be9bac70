package service

import (
	"context"
	"crypto/subtle"
	"time"

	"promo-order-bot/config"
	"promo-order-bot/internal/core/ports"
	"promo-order-bot/pkg/apperror"

	"github.com/rs/zerolog"
)

// AuthService authenticates the single operator account configured for the
// admin HTTP API.
type AuthService struct {
	cfg    config.AdminConfig
	hasher ports.HashService
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(cfg config.AdminConfig, hasher ports.HashService, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies the operator credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1

	// Always run the hash comparison so a wrong username costs the same as a
	// wrong password.
	passwordOK, err := s.hasher.Verify(password, s.cfg.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Msg("password hash verification errored")
		passwordOK = false
	}

	if !usernameOK || !passwordOK {
		s.log.Warn().Str("username", username).Msg("failed login attempt")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokens.Generate(username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}

	s.log.Info().Str("username", username).Msg("operator logged in")
	return token, expiresAt, nil
}
