package service

import (
	"context"
	"regexp"
	"time"

	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"
	"promo-order-bot/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var txnHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// OrderService builds and persists orders from completed wizard drafts.
type OrderService struct {
	repo    ports.OrderRepository
	oracle  ports.ChainOracle
	pricing ports.Pricing
	log     zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, oracle ports.ChainOracle, pricing ports.Pricing, log zerolog.Logger) *OrderService {
	return &OrderService{
		repo:    repo,
		oracle:  oracle,
		pricing: pricing,
		log:     log.With().Str("component", "order_service").Logger(),
	}
}

// Create validates the draft, prices it, and persists a PENDING order with
// the deposit address snapshotted from the oracle. The wizard guarantees most
// fields; the invariants re-checked here are the ones verification depends on.
func (s *OrderService) Create(ctx context.Context, req ports.CreateOrderRequest) (*domain.Order, error) {
	draft := req.Draft

	if !draft.PaymentNetwork.Valid() {
		return nil, apperror.ErrUnsupportedNetwork(string(draft.PaymentNetwork))
	}
	if req.TxnHash == "" || !txnHashRe.MatchString(req.TxnHash) {
		return nil, apperror.ErrInvalidTxnHash()
	}

	price, err := s.pricing.PriceFor(draft.DurationHours)
	if err != nil {
		return nil, err
	}

	wallet, err := s.oracle.WalletAddress(draft.PaymentNetwork)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txnHash := req.TxnHash
	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   req.UserID,
		Username: req.Username,
		Project: domain.ProjectDetails{
			Name:            draft.ProjectName,
			ContractAddress: draft.ContractAddress,
			Blockchain:      draft.Blockchain,
			Description:     draft.Description,
			Links:           draft.Links,
		},
		Service: domain.ServiceConfig{
			Type:          draft.ServiceType,
			PinnedPosts:   draft.PinnedPosts,
			DurationHours: draft.DurationHours,
			StartDate:     draft.StartDate,
			EndDate:       draft.StartDate.Add(time.Duration(draft.DurationHours) * time.Hour),
		},
		Payment: domain.PaymentInfo{
			Network:       draft.PaymentNetwork,
			Amount:        price,
			WalletAddress: wallet,
			TxnHash:       &txnHash,
			Status:        domain.PaymentStatusPending,
		},
		TotalPrice: price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Int64("user_id", order.UserID).
		Str("network", string(order.Payment.Network)).
		Str("amount", order.Payment.Amount.String()).
		Msg("order created")

	return order, nil
}

// ResubmitTxnHash replaces the transaction hash on a PENDING order. A typo'd
// hash never matches on chain, so the user gets one way to point verification
// at the right transaction. Ownership is checked so users cannot touch each
// other's orders; a wrong owner reads the same as a missing order.
func (s *OrderService) ResubmitTxnHash(ctx context.Context, orderID uuid.UUID, userID int64, txnHash string) (*domain.Order, error) {
	if !txnHashRe.MatchString(txnHash) {
		return nil, apperror.ErrInvalidTxnHash()
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if order == nil || order.UserID != userID {
		return nil, apperror.ErrOrderNotFound()
	}
	if order.Resolved() {
		return nil, apperror.ErrOrderAlreadyResolved(string(order.Payment.Status))
	}

	if err := s.repo.SetTxnHash(ctx, orderID, txnHash); err != nil {
		return nil, apperror.InternalError(err)
	}
	order.Payment.TxnHash = &txnHash

	s.log.Info().
		Str("order_id", orderID.String()).
		Int64("user_id", userID).
		Msg("transaction hash resubmitted")

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound()
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return orders, nil
}

func (s *OrderService) ListPending(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListByStatus(ctx, domain.PaymentStatusPending)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return orders, nil
}

func (s *OrderService) Stats(ctx context.Context) (*ports.OrderStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}
