package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, username, project_name, contract_address, blockchain, description,
	twitter, telegram, website, service_type, pinned_posts, duration_hours, start_date, end_date,
	network, amount, wallet_address, txn_hash, payment_status, confirmed_at, failed_at,
	total_price, admin_notes, created_at, updated_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.UserID, o.Username,
		o.Project.Name, o.Project.ContractAddress, o.Project.Blockchain, o.Project.Description,
		o.Project.Links.Twitter, o.Project.Links.Telegram, o.Project.Links.Website,
		o.Service.Type, o.Service.PinnedPosts, o.Service.DurationHours, o.Service.StartDate, o.Service.EndDate,
		o.Payment.Network, o.Payment.Amount.String(), o.Payment.WalletAddress, o.Payment.TxnHash,
		o.Payment.Status, o.Payment.ConfirmedAt, o.Payment.FailedAt,
		o.TotalPrice.String(), o.AdminNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by UUID. Returns (nil, nil) when absent.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

// SetTxnHash records the user-submitted transaction hash.
func (r *OrderRepo) SetTxnHash(ctx context.Context, id uuid.UUID, txnHash string) error {
	query := `UPDATE orders SET txn_hash = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, txnHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set txn hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// ListByStatus fetches all orders in the given payment status.
func (r *OrderRepo) ListByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_status = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListByUser fetches all orders created by a Telegram user.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ResolvePayment commits a terminal payment transition. The UPDATE is
// conditional on the persisted status still being PENDING, which makes the
// check-and-write atomic: concurrent resolvers race on the row and exactly
// one observes RowsAffected == 1.
func (r *OrderRepo) ResolvePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, at time.Time) (bool, error) {
	var stampCol string
	switch status {
	case domain.PaymentStatusConfirmed:
		stampCol = "confirmed_at"
	case domain.PaymentStatusFailed:
		stampCol = "failed_at"
	default:
		return false, fmt.Errorf("resolve payment: %q is not a terminal status", status)
	}

	query := fmt.Sprintf(
		`UPDATE orders SET payment_status = $1, %s = $2, updated_at = $3 WHERE id = $4 AND payment_status = $5`,
		stampCol,
	)

	tag, err := r.pool.Exec(ctx, query, status, at, at, id, domain.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("resolve payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats retrieves aggregated order counters for the operator surface.
func (r *OrderRepo) Stats(ctx context.Context) (*ports.OrderStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE payment_status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE payment_status = 'CONFIRMED') AS confirmed,
		COUNT(*) FILTER (WHERE payment_status = 'FAILED') AS failed,
		COALESCE(SUM(total_price) FILTER (WHERE payment_status = 'CONFIRMED'), 0)::text AS revenue
		FROM orders`

	stats := &ports.OrderStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalOrders, &stats.Pending, &stats.Confirmed, &stats.Failed, &stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("get order stats: %w", err)
	}
	return stats, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// scanOrder scans a single row, mapping pgx.ErrNoRows to (nil, nil).
func scanOrder(row pgx.Row) (*domain.Order, error) {
	o, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func scanOrderRow(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	var amount, totalPrice string

	err := row.Scan(
		&o.ID, &o.UserID, &o.Username,
		&o.Project.Name, &o.Project.ContractAddress, &o.Project.Blockchain, &o.Project.Description,
		&o.Project.Links.Twitter, &o.Project.Links.Telegram, &o.Project.Links.Website,
		&o.Service.Type, &o.Service.PinnedPosts, &o.Service.DurationHours, &o.Service.StartDate, &o.Service.EndDate,
		&o.Payment.Network, &amount, &o.Payment.WalletAddress, &o.Payment.TxnHash,
		&o.Payment.Status, &o.Payment.ConfirmedAt, &o.Payment.FailedAt,
		&totalPrice, &o.AdminNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if o.Payment.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse order amount: %w", err)
	}
	if o.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return nil, fmt.Errorf("parse order total price: %w", err)
	}
	return o, nil
}
