package handler

import (
	"time"

	"promo-order-bot/internal/core/ports"
	"promo-order-bot/pkg/apperror"
	"promo-order-bot/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler serves operator login and health.
type AuthHandler struct {
	auth    ports.AuthService
	healths []ports.HealthChecker
	log     zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, healths []ports.HealthChecker, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		healths: healths,
		log:     log.With().Str("component", "auth_handler").Logger(),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("username and password are required"))
		return
	}

	token, expiresAt, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// HealthCheck handles GET /health. Reports each dependency and degrades the
// overall status if any check fails.
func (h *AuthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	checks := make(map[string]string, len(h.healths))
	for _, hc := range h.healths {
		if err := hc.Ping(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Str("dependency", hc.Name()).Msg("health check failed")
			checks[hc.Name()] = "down"
			status = "degraded"
			continue
		}
		checks[hc.Name()] = "up"
	}

	response.OK(c, gin.H{
		"status": status,
		"checks": checks,
	})
}
