package ports

import (
	"context"
	"time"

	"promo-order-bot/internal/core/domain"

	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for orders.
// Lookup methods return (nil, nil) when the record is absent.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetTxnHash(ctx context.Context, id uuid.UUID, txnHash string) error
	ListByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// ResolvePayment commits the terminal transition for an order. The write is
	// conditional on the persisted status still being PENDING; it returns true
	// only if this caller won the transition.
	ResolvePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, at time.Time) (bool, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

// OrderStats holds aggregated counters for the operator surface.
type OrderStats struct {
	TotalOrders  int64
	Pending      int64
	Confirmed    int64
	Failed       int64
	TotalRevenue string // sum of confirmed order prices, decimal string
}

// SessionStore defines persistence for ephemeral wizard sessions,
// keyed by Telegram user id. Get returns (nil, nil) when absent.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context, userID int64) error
}
