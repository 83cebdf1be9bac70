package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"promo-order-bot/config"
	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"
	"promo-order-bot/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// resolveTimeout bounds the terminal write, which runs on a fresh context
// because the task context may already be past its deadline.
const resolveTimeout = 10 * time.Second

type task struct {
	cancel context.CancelFunc
	chatID int64
}

// Verifier polls the chain oracle for each PENDING order until the payment
// confirms, the attempt budget runs out, or the deadline passes. Exactly one
// task runs per order; the terminal write is a conditional update, so a task
// racing a manual verification resolves the order at most once.
type Verifier struct {
	repo     ports.OrderRepository
	oracle   ports.ChainOracle
	notifier ports.Notifier
	cfg      config.VerifierConfig
	log      zerolog.Logger

	mu    sync.Mutex
	tasks map[uuid.UUID]*task
	wg    sync.WaitGroup
}

func NewVerifier(repo ports.OrderRepository, oracle ports.ChainOracle, notifier ports.Notifier, cfg config.VerifierConfig, log zerolog.Logger) *Verifier {
	return &Verifier{
		repo:     repo,
		oracle:   oracle,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "verifier").Logger(),
		tasks:    make(map[uuid.UUID]*task),
	}
}

// Start registers a polling task for the order. A duplicate call while a task
// is active is a no-op.
func (v *Verifier) Start(orderID uuid.UUID, chatID int64) {
	v.start(orderID, chatID)
}

// start reports whether it actually registered a new task.
func (v *Verifier) start(orderID uuid.UUID, chatID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.tasks[orderID]; exists {
		return false
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(v.cfg.Deadline))
	t := &task{cancel: cancel, chatID: chatID}
	v.tasks[orderID] = t
	v.wg.Add(1)
	go v.run(ctx, orderID, t)

	v.log.Info().Str("order_id", orderID.String()).Msg("verification task started")
	return true
}

// Stop cancels and removes any active task for the order; idempotent.
func (v *Verifier) Stop(orderID uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.tasks[orderID]; ok {
		t.cancel()
		delete(v.tasks, orderID)
	}
}

// StopAll cancels every active task and waits for the goroutines to exit.
func (v *Verifier) StopAll() {
	v.mu.Lock()
	for id, t := range v.tasks {
		t.cancel()
		delete(v.tasks, id)
	}
	v.mu.Unlock()
	v.wg.Wait()
}

// Active returns a snapshot of order ids with in-flight tasks.
func (v *Verifier) Active() []uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(v.tasks))
	for id := range v.tasks {
		ids = append(ids, id)
	}
	return ids
}

// remove deregisters own, and only own: after a Stop/Start cycle the map may
// already hold a successor task for the same order, which must keep running.
func (v *Verifier) remove(orderID uuid.UUID, own *task) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.tasks[orderID]; ok && t == own {
		t.cancel()
		delete(v.tasks, orderID)
	}
}

func (v *Verifier) chatIDFor(orderID uuid.UUID) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.tasks[orderID]; ok {
		return t.chatID
	}
	return 0
}

func (v *Verifier) run(ctx context.Context, orderID uuid.UUID, t *task) {
	defer v.wg.Done()
	defer v.remove(orderID, t)

	chatID := t.chatID

	log := v.log.With().Str("order_id", orderID.String()).Logger()

	ticker := time.NewTicker(v.cfg.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		done, counted := v.tick(ctx, orderID, chatID, log)
		if done {
			return
		}
		if counted {
			attempts++
			if attempts >= v.cfg.MaxAttempts {
				log.Warn().Int("attempts", attempts).Msg("attempt budget exhausted")
				v.resolve(orderID, domain.PaymentStatusFailed, chatID)
				return
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.Warn().Msg("verification deadline passed")
				v.resolve(orderID, domain.PaymentStatusFailed, chatID)
			}
			return
		case <-ticker.C:
		}
	}
}

// tick performs one verification attempt. done stops the task; counted marks
// the attempt against the budget. An oracle error is treated the same as a
// non-matching transaction: not yet valid, one attempt spent. Store read
// failures are not counted; the deadline still bounds them.
func (v *Verifier) tick(ctx context.Context, orderID uuid.UUID, chatID int64, log zerolog.Logger) (done, counted bool) {
	order, err := v.repo.GetByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Msg("fetching order for verification")
		return false, false
	}
	if order == nil {
		log.Warn().Msg("order vanished, dropping task")
		return true, false
	}
	if order.Resolved() {
		return true, false
	}
	if !order.HasTxnHash() {
		return false, false
	}

	valid, err := v.oracle.Validate(ctx, *order.Payment.TxnHash, order.Payment.Network, order.Payment.Amount, order.Payment.WalletAddress)
	if err != nil {
		log.Warn().Err(err).Msg("oracle check errored, counts as not yet valid")
		return false, true
	}
	if valid {
		v.resolve(orderID, domain.PaymentStatusConfirmed, chatID)
		return true, false
	}
	return false, true
}

// resolve commits the terminal transition and notifies the winner's chat.
// Returns true only if this caller won the PENDING -> terminal race. On a
// store failure the task is dropped; the sweeper restarts it later.
func (v *Verifier) resolve(orderID uuid.UUID, status domain.PaymentStatus, chatID int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	log := v.log.With().Str("order_id", orderID.String()).Str("status", string(status)).Logger()

	won, err := v.repo.ResolvePayment(ctx, orderID, status, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("persisting terminal status failed, sweeper will retry")
		return false
	}
	if !won {
		log.Debug().Msg("order already resolved elsewhere")
		return false
	}

	log.Info().Msg("payment resolved")

	order, err := v.repo.GetByID(ctx, orderID)
	if err != nil || order == nil {
		log.Warn().Err(err).Msg("fetching resolved order for notification")
		return true
	}
	v.notifier.NotifyOrderResolved(ctx, order, chatID)
	return true
}

// ManualVerify performs one synchronous oracle check. A valid result resolves
// the order exactly as the polling path would; an invalid result leaves it
// PENDING for the task to keep polling. Returns the payment status after the
// check.
func (v *Verifier) ManualVerify(ctx context.Context, orderID uuid.UUID) (domain.PaymentStatus, error) {
	order, err := v.repo.GetByID(ctx, orderID)
	if err != nil {
		return "", apperror.InternalError(err)
	}
	if order == nil {
		return "", apperror.ErrOrderNotFound()
	}
	if order.Resolved() {
		return order.Payment.Status, nil
	}
	if !order.HasTxnHash() {
		return order.Payment.Status, apperror.ErrMissingTxnHash()
	}

	valid, err := v.oracle.Validate(ctx, *order.Payment.TxnHash, order.Payment.Network, order.Payment.Amount, order.Payment.WalletAddress)
	if err != nil {
		return domain.PaymentStatusPending, err
	}
	if !valid {
		return domain.PaymentStatusPending, nil
	}

	if v.resolve(orderID, domain.PaymentStatusConfirmed, v.chatIDFor(orderID)) {
		v.Stop(orderID)
		return domain.PaymentStatusConfirmed, nil
	}

	// Lost the race; report what actually got persisted.
	current, err := v.repo.GetByID(ctx, orderID)
	if err != nil || current == nil {
		return domain.PaymentStatusConfirmed, nil
	}
	return current.Payment.Status, nil
}

// Sweep starts verification for every PENDING order without an active task.
// Orders from private chats notify via the user's id, which doubles as the
// chat id there.
func (v *Verifier) Sweep(ctx context.Context) (int, error) {
	orders, err := v.repo.ListByStatus(ctx, domain.PaymentStatusPending)
	if err != nil {
		return 0, apperror.InternalError(err)
	}

	started := 0
	for i := range orders {
		o := &orders[i]
		if !o.HasTxnHash() {
			continue
		}
		if v.start(o.ID, o.UserID) {
			started++
		}
	}
	return started, nil
}

// RunSweeper runs Sweep on the configured cadence until the context ends.
// It sweeps once immediately so PENDING orders left over from a restart are
// picked up right away.
func (v *Verifier) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(v.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		n, err := v.Sweep(ctx)
		if err != nil {
			v.log.Error().Err(err).Msg("sweep failed")
		} else if n > 0 {
			v.log.Info().Int("started", n).Msg("sweep restarted verification tasks")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
