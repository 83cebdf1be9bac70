package integration

import (
	"context"
	"sync"
	"time"

	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// inMemoryOrderRepo mirrors the Postgres repository's semantics, including
// the conditional terminal update, for tests that exercise whole flows.
type inMemoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) SetTxnHash(_ context.Context, id uuid.UUID, txnHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.Payment.TxnHash = &txnHash
		o.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *inMemoryOrderRepo) ListByStatus(_ context.Context, status domain.PaymentStatus) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Payment.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *inMemoryOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *inMemoryOrderRepo) ResolvePayment(_ context.Context, id uuid.UUID, status domain.PaymentStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Payment.Status != domain.PaymentStatusPending {
		return false, nil
	}
	o.Payment.Status = status
	if status == domain.PaymentStatusConfirmed {
		o.Payment.ConfirmedAt = &at
	} else {
		o.Payment.FailedAt = &at
	}
	o.UpdatedAt = at
	return true, nil
}

func (r *inMemoryOrderRepo) Stats(_ context.Context) (*ports.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.OrderStats{}
	revenue := decimal.Zero
	for _, o := range r.orders {
		stats.TotalOrders++
		switch o.Payment.Status {
		case domain.PaymentStatusPending:
			stats.Pending++
		case domain.PaymentStatusConfirmed:
			stats.Confirmed++
			revenue = revenue.Add(o.TotalPrice)
		case domain.PaymentStatusFailed:
			stats.Failed++
		}
	}
	stats.TotalRevenue = revenue.String()
	return stats, nil
}

// switchableOracle flips between invalid and valid answers, simulating a
// transaction that confirms on chain mid-test.
type switchableOracle struct {
	mu    sync.Mutex
	valid bool
}

func (o *switchableOracle) setValid(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.valid = v
}

func (o *switchableOracle) Validate(context.Context, string, domain.Network, decimal.Decimal, string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.valid, nil
}

func (o *switchableOracle) WalletAddress(domain.Network) (string, error) {
	return "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", nil
}

// countingNotifier records resolution notifications.
type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) NotifyOrderResolved(context.Context, *domain.Order, int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *countingNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
