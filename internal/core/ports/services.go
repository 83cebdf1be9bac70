package ports

import (
	"context"
	"time"

	"promo-order-bot/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChainOracle is the read-only source of truth about on-chain transaction
// state. Validate reports (false, err) on transport failures and (false, nil)
// on a well-formed but non-matching transaction.
type ChainOracle interface {
	Validate(ctx context.Context, txnHash string, network domain.Network, expectedAmount decimal.Decimal, toAddress string) (bool, error)
	// WalletAddress returns the deposit address for a network.
	WalletAddress(network domain.Network) (string, error)
}

// Notifier delivers a best-effort status message to the order's originating
// chat. Implementations swallow delivery failures; a non-positive chatID is a
// legitimate no-op.
type Notifier interface {
	NotifyOrderResolved(ctx context.Context, order *domain.Order, chatID int64)
}

// Verifier drives bounded, periodic payment verification per order.
type Verifier interface {
	// Start registers a polling task for the order. A duplicate call while a
	// task is active is a no-op.
	Start(orderID uuid.UUID, chatID int64)
	// Stop cancels and removes any active task; idempotent.
	Stop(orderID uuid.UUID)
	// StopAll cancels every active task and waits for them to exit.
	StopAll()
	// Sweep starts verification for every PENDING order lacking an active
	// task and returns the number of tasks started.
	Sweep(ctx context.Context) (int, error)
	// ManualVerify performs one synchronous oracle check outside the polling
	// cadence. On a valid result it resolves the order exactly as the polling
	// path would. Returns the order's payment status after the check.
	ManualVerify(ctx context.Context, orderID uuid.UUID) (domain.PaymentStatus, error)
	// Active returns a snapshot of order ids with in-flight tasks.
	Active() []uuid.UUID
}

// OrderService owns order intake.
type OrderService interface {
	// Create persists a new PENDING order built from a completed wizard
	// draft, with the transaction hash supplied by the user.
	Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	// ResubmitTxnHash replaces the transaction hash on a still-PENDING order
	// owned by userID, so verification can retry against the right transaction.
	ResubmitTxnHash(ctx context.Context, orderID uuid.UUID, userID int64, txnHash string) (*domain.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListPending(ctx context.Context) ([]domain.Order, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

// CreateOrderRequest holds validated input for order creation.
type CreateOrderRequest struct {
	UserID   int64
	Username string
	Draft    domain.OrderDraft
	TxnHash  string
}

// Pricing converts a service duration into a price.
type Pricing interface {
	// PriceFor returns the USD price for a duration in hours.
	PriceFor(durationHours int) (decimal.Decimal, error)
	ValidDuration(durationHours int) bool
	Breakdown(durationHours int) string
}

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (string, error) // returns subject
}

// HashService handles password hashing for the operator account.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// AuthService authenticates the operator for the admin HTTP API.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
