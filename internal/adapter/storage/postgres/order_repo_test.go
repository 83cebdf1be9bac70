package postgres

import (
	"context"
	"testing"
	"time"

	"promo-order-bot/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	hash := "0xa1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"
	return &domain.Order{
		ID:       uuid.New(),
		UserID:   42,
		Username: "alice",
		Project: domain.ProjectDetails{
			Name:            "MoonToken",
			ContractAddress: "0x9999999999999999999999999999999999999999",
			Blockchain:      domain.NetworkBSC,
			Description:     "to the moon",
			Links:           domain.SocialLinks{Twitter: "https://x.com/moontoken"},
		},
		Service: domain.ServiceConfig{
			Type:          domain.ServicePin,
			PinnedPosts:   2,
			DurationHours: 48,
			StartDate:     now,
			EndDate:       now.Add(48 * time.Hour),
		},
		Payment: domain.PaymentInfo{
			Network:       domain.NetworkBSC,
			Amount:        decimal.RequireFromString("50"),
			WalletAddress: "0x1111111111111111111111111111111111111111",
			TxnHash:       &hash,
			Status:        domain.PaymentStatusPending,
		},
		TotalPrice: decimal.RequireFromString("50"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func orderColumnNames() []string {
	return []string{"id", "user_id", "username", "project_name", "contract_address", "blockchain",
		"description", "twitter", "telegram", "website", "service_type", "pinned_posts",
		"duration_hours", "start_date", "end_date", "network", "amount", "wallet_address",
		"txn_hash", "payment_status", "confirmed_at", "failed_at", "total_price", "admin_notes",
		"created_at", "updated_at"}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderColumnNames()).AddRow(
		o.ID, o.UserID, o.Username,
		o.Project.Name, o.Project.ContractAddress, o.Project.Blockchain, o.Project.Description,
		o.Project.Links.Twitter, o.Project.Links.Telegram, o.Project.Links.Website,
		o.Service.Type, o.Service.PinnedPosts, o.Service.DurationHours, o.Service.StartDate, o.Service.EndDate,
		o.Payment.Network, o.Payment.Amount.String(), o.Payment.WalletAddress, o.Payment.TxnHash,
		o.Payment.Status, o.Payment.ConfirmedAt, o.Payment.FailedAt,
		o.TotalPrice.String(), o.AdminNotes, o.CreatedAt, o.UpdatedAt,
	)
}

func TestOrderRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.UserID, o.Username,
			o.Project.Name, o.Project.ContractAddress, o.Project.Blockchain, o.Project.Description,
			o.Project.Links.Twitter, o.Project.Links.Telegram, o.Project.Links.Website,
			o.Service.Type, o.Service.PinnedPosts, o.Service.DurationHours, o.Service.StartDate, o.Service.EndDate,
			o.Payment.Network, o.Payment.Amount.String(), o.Payment.WalletAddress, o.Payment.TxnHash,
			o.Payment.Status, o.Payment.ConfirmedAt, o.Payment.FailedAt,
			o.TotalPrice.String(), o.AdminNotes, o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), o)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByID_Found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id =").
		WithArgs(o.ID).
		WillReturnRows(orderRow(o))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Project.Name, got.Project.Name)
	assert.True(t, got.Payment.Amount.Equal(o.Payment.Amount))
	assert.Equal(t, domain.PaymentStatusPending, got.Payment.Status)
}

func TestOrderRepo_GetByID_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id =").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(orderColumnNames()))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got, "absent order should be (nil, nil)")
}

func TestOrderRepo_ResolvePayment_Wins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs(domain.PaymentStatusConfirmed, at, at, id, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := repo.ResolvePayment(context.Background(), id, domain.PaymentStatusConfirmed, at)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestOrderRepo_ResolvePayment_LosesRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	// Another resolver already moved the order out of PENDING.
	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs(domain.PaymentStatusFailed, at, at, id, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.ResolvePayment(context.Background(), id, domain.PaymentStatusFailed, at)
	require.NoError(t, err)
	assert.False(t, updated, "losing writer must observe zero rows affected")
}

func TestOrderRepo_ResolvePayment_RejectsNonTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	_, err = repo.ResolvePayment(context.Background(), uuid.New(), domain.PaymentStatusPending, time.Now())
	assert.Error(t, err)
}

func TestOrderRepo_ListByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o1 := newTestOrder()
	o2 := newTestOrder()

	rows := orderRow(o1)
	rows.AddRow(
		o2.ID, o2.UserID, o2.Username,
		o2.Project.Name, o2.Project.ContractAddress, o2.Project.Blockchain, o2.Project.Description,
		o2.Project.Links.Twitter, o2.Project.Links.Telegram, o2.Project.Links.Website,
		o2.Service.Type, o2.Service.PinnedPosts, o2.Service.DurationHours, o2.Service.StartDate, o2.Service.EndDate,
		o2.Payment.Network, o2.Payment.Amount.String(), o2.Payment.WalletAddress, o2.Payment.TxnHash,
		o2.Payment.Status, o2.Payment.ConfirmedAt, o2.Payment.FailedAt,
		o2.TotalPrice.String(), o2.AdminNotes, o2.CreatedAt, o2.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE payment_status =").
		WithArgs(domain.PaymentStatusPending).
		WillReturnRows(rows)

	orders, err := repo.ListByStatus(context.Background(), domain.PaymentStatusPending)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderRepo_SetTxnHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE orders SET txn_hash").
		WithArgs("0xdeadbeef", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.SetTxnHash(context.Background(), id, "0xdeadbeef")
	assert.Error(t, err)
}

func TestOrderRepo_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT(.|\n)+FROM orders").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "confirmed", "failed", "revenue"}).
			AddRow(int64(10), int64(3), int64(6), int64(1), "450"))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(6), stats.Confirmed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, "450", stats.TotalRevenue)
}
