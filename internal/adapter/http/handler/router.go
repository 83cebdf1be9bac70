package handler

import (
	"promo-order-bot/config"
	"promo-order-bot/internal/adapter/http/middleware"
	"promo-order-bot/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps bundles everything the admin API needs.
type RouterDeps struct {
	Config   *config.Config
	Auth     ports.AuthService
	Tokens   ports.TokenService
	Orders   ports.OrderService
	Verifier ports.Verifier
	Healths  []ports.HealthChecker
	Log      zerolog.Logger
}

// SetupRouter builds the gin engine for the operator API.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(deps.Config.Server.Mode)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Recovery(deps.Log),
	)

	authHandler := NewAuthHandler(deps.Auth, deps.Healths, deps.Log)
	orderHandler := NewOrderHandler(deps.Orders, deps.Verifier, deps.Log)

	router.GET("/health", authHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(deps.Tokens))
	{
		protected.GET("/orders/pending", orderHandler.ListPending)
		protected.GET("/orders/stats", orderHandler.Stats)
		protected.GET("/orders/:id", orderHandler.Get)
		protected.POST("/orders/:id/verify", orderHandler.Verify)
		protected.GET("/verifier/status", orderHandler.VerifierStatus)
	}

	return router
}
