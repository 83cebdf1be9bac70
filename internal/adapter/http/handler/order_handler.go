package handler

import (
	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"
	"promo-order-bot/pkg/apperror"
	"promo-order-bot/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler serves the operator order endpoints.
type OrderHandler struct {
	orders   ports.OrderService
	verifier ports.Verifier
	log      zerolog.Logger
}

func NewOrderHandler(orders ports.OrderService, verifier ports.Verifier, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		verifier: verifier,
		log:      log.With().Str("component", "order_handler").Logger(),
	}
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("order id must be a UUID"))
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}

// Verify handles POST /api/v1/orders/:id/verify: one synchronous on-chain
// check. A transaction that still doesn't validate answers 409 so the
// operator knows to retry later.
func (h *OrderHandler) Verify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("order id must be a UUID"))
		return
	}

	status, err := h.verifier.ManualVerify(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if status == domain.PaymentStatusPending {
		response.Error(c, apperror.ErrVerificationPending())
		return
	}

	response.OK(c, gin.H{
		"order_id": id,
		"status":   status,
	})
}

// ListPending handles GET /api/v1/orders/pending.
func (h *OrderHandler) ListPending(c *gin.Context) {
	orders, err := h.orders.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// Stats handles GET /api/v1/orders/stats.
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// VerifierStatus handles GET /api/v1/verifier/status.
func (h *OrderHandler) VerifierStatus(c *gin.Context) {
	active := h.verifier.Active()
	response.OK(c, gin.H{
		"active_tasks": active,
		"count":        len(active),
	})
}
