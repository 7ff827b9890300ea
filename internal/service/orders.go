package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
	"github.com/huyndao/robux-exchange/internal/observability"
)

// OrderService is the order lifecycle engine: it creates deposit and
// withdraw orders, applies approvals and rejections, and expires stale
// pending orders. Every mutation runs as one atomic store update.
type OrderService struct {
	store      *ledger.Store
	pendingTTL time.Duration
	now        func() time.Time
}

func NewOrderService(store *ledger.Store) *OrderService {
	return &OrderService{
		store:      store,
		pendingTTL: domain.PendingOrderTTL,
		now:        time.Now,
	}
}

// WithPendingTTL overrides how long an order may stay pending before the
// expiry sweep fails it.
func (s *OrderService) WithPendingTTL(ttl time.Duration) *OrderService {
	if ttl > 0 {
		s.pendingTTL = ttl
	}
	return s
}

// CreateDepositInput carries the submitted deposit fields. Seri, Code and
// CardType are card-only.
type CreateDepositInput struct {
	User     string
	Amount   int64
	Type     string
	Seri     string
	Code     string
	CardType string
}

// CreateDeposit appends a pending deposit order. The balance is not
// touched and the amount is not bounds-checked here; the stored robux
// value is a quote at the current rate and is recomputed at approval.
func (s *OrderService) CreateDeposit(ctx context.Context, in CreateDepositInput) (*models.DepositOrder, error) {
	var created models.DepositOrder
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		if _, ok := doc.Users[in.User]; !ok {
			return models.ErrUserNotFound
		}
		order := &models.DepositOrder{
			ID:       doc.NextID(),
			User:     in.User,
			Amount:   in.Amount,
			Robux:    domain.ComputeCredit(in.Amount, in.Type, in.CardType, doc.Rate),
			Type:     in.Type,
			Seri:     in.Seri,
			Code:     in.Code,
			CardType: in.CardType,
			Status:   domain.StatusPending,
			Time:     s.now().UTC(),
		}
		doc.Deposits = append(doc.Deposits, order)
		created = *order
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.IncrementOrderTransition(domain.QueueDeposits, "created")
	return &created, nil
}

// CreateWithdraw appends a pending withdraw order after checking the
// user's current balance. The debit itself happens at approval time.
func (s *OrderService) CreateWithdraw(ctx context.Context, username string, robux int64, to string) (*models.WithdrawOrder, error) {
	var created models.WithdrawOrder
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		user, ok := doc.Users[username]
		if !ok {
			return models.ErrUserNotFound
		}
		if user.Balance < robux {
			return models.ErrInsufficientBalance
		}
		order := &models.WithdrawOrder{
			ID:     doc.NextID(),
			User:   username,
			Robux:  robux,
			To:     to,
			Status: domain.StatusPending,
			Time:   s.now().UTC(),
		}
		doc.Withdraws = append(doc.Withdraws, order)
		created = *order
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.IncrementOrderTransition(domain.QueueWithdraws, "created")
	return &created, nil
}

// ApproveDeposit marks a pending deposit successful, re-prices it at the
// current exchange rate, credits the user and applies the referral bonus
// policy, all inside one atomic update. Re-pricing at approval time is
// deliberate: the stored robux value was only a quote.
func (s *OrderService) ApproveDeposit(ctx context.Context, id int64) (*models.DepositOrder, error) {
	var (
		approved     models.DepositOrder
		bonusGranted bool
	)
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		order := doc.FindDeposit(id)
		if order == nil {
			return models.ErrOrderNotFound
		}
		if order.Status != domain.StatusPending {
			return models.ErrOrderNotPending
		}
		user, ok := doc.Users[order.User]
		if !ok {
			return models.ErrUserNotFound
		}

		credit := domain.ComputeCredit(order.Amount, order.Type, order.CardType, doc.Rate)
		order.Status = domain.StatusSuccess
		order.Robux = credit
		user.Balance += credit

		bonusGranted = applyReferralBonus(doc, order, s.now().UTC())
		approved = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementOrderTransition(domain.QueueDeposits, "approved")
	zap.L().Info("deposit approved",
		zap.Int64("order_id", approved.ID),
		zap.String("user", approved.User),
		zap.Int64("robux", approved.Robux),
		zap.Bool("referral_bonus", bonusGranted),
	)
	return &approved, nil
}

// ApproveWithdraw marks a pending withdraw successful and debits the
// user. The balance is re-checked here: several sibling shops debit
// unconditionally and can drive a balance negative when two approvals
// race a shared balance, so the re-check is a deliberate hardening.
func (s *OrderService) ApproveWithdraw(ctx context.Context, id int64) (*models.WithdrawOrder, error) {
	var approved models.WithdrawOrder
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		order := doc.FindWithdraw(id)
		if order == nil {
			return models.ErrOrderNotFound
		}
		if order.Status != domain.StatusPending {
			return models.ErrOrderNotPending
		}
		user, ok := doc.Users[order.User]
		if !ok {
			return models.ErrUserNotFound
		}
		if user.Balance < order.Robux {
			return models.ErrInsufficientBalance
		}

		order.Status = domain.StatusSuccess
		user.Balance -= order.Robux
		approved = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementOrderTransition(domain.QueueWithdraws, "approved")
	zap.L().Info("withdraw approved",
		zap.Int64("order_id", approved.ID),
		zap.String("user", approved.User),
		zap.Int64("robux", approved.Robux),
	)
	return &approved, nil
}

// Reject deletes a pending order from its queue without side effects.
// Unknown ids and already-resolved orders are a no-op.
func (s *OrderService) Reject(ctx context.Context, id int64, queue string) error {
	rejected := false
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		switch queue {
		case domain.QueueDeposits:
			for i, d := range doc.Deposits {
				if d.ID == id && d.Status == domain.StatusPending {
					doc.Deposits = append(doc.Deposits[:i], doc.Deposits[i+1:]...)
					rejected = true
					return nil
				}
			}
		case domain.QueueWithdraws:
			for i, w := range doc.Withdraws {
				if w.ID == id && w.Status == domain.StatusPending {
					doc.Withdraws = append(doc.Withdraws[:i], doc.Withdraws[i+1:]...)
					rejected = true
					return nil
				}
			}
		}
		return ledger.ErrNoChange
	})
	if err != nil {
		return err
	}
	if rejected {
		observability.IncrementOrderTransition(queue, "rejected")
	}
	return nil
}

// SweepExpired fails every pending order strictly older than the pending
// TTL. Pending orders never touched the balance, so there is nothing to
// refund. Idempotent: a second sweep at the same instant changes nothing.
func (s *OrderService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	byQueue := map[string]int{}
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		expired = 0
		byQueue = map[string]int{}
		for _, d := range doc.Deposits {
			if d.Status == domain.StatusPending && now.Sub(d.Time) > s.pendingTTL {
				d.Status = domain.StatusFailed
				expired++
				byQueue[domain.QueueDeposits]++
			}
		}
		for _, w := range doc.Withdraws {
			if w.Status == domain.StatusPending && now.Sub(w.Time) > s.pendingTTL {
				w.Status = domain.StatusFailed
				expired++
				byQueue[domain.QueueWithdraws]++
			}
		}
		if expired == 0 {
			return ledger.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for queue, n := range byQueue {
		for i := 0; i < n; i++ {
			observability.IncrementOrderTransition(queue, "expired")
		}
	}
	return expired, nil
}

// PendingOrders returns both pending queues for the admin review screen,
// expiring stale orders first so the admin never sees a dead order.
func (s *OrderService) PendingOrders(ctx context.Context) ([]models.DepositOrder, []models.WithdrawOrder, error) {
	if _, err := s.SweepExpired(ctx, s.now()); err != nil {
		return nil, nil, err
	}

	var (
		deposits  []models.DepositOrder
		withdraws []models.WithdrawOrder
	)
	s.store.View(func(doc *models.Ledger) {
		for _, d := range doc.Deposits {
			if d.Status == domain.StatusPending {
				deposits = append(deposits, *d)
			}
		}
		for _, w := range doc.Withdraws {
			if w.Status == domain.StatusPending {
				withdraws = append(withdraws, *w)
			}
		}
	})
	observability.SetPendingOrders(domain.QueueDeposits, len(deposits))
	observability.SetPendingOrders(domain.QueueWithdraws, len(withdraws))
	return deposits, withdraws, nil
}

// History returns every order belonging to the user, newest last,
// sweeping expired orders first.
func (s *OrderService) History(ctx context.Context, username string) ([]models.DepositOrder, []models.WithdrawOrder, error) {
	if _, err := s.SweepExpired(ctx, s.now()); err != nil {
		return nil, nil, err
	}

	var (
		deposits  []models.DepositOrder
		withdraws []models.WithdrawOrder
		found     bool
	)
	s.store.View(func(doc *models.Ledger) {
		_, found = doc.Users[username]
		for _, d := range doc.Deposits {
			if d.User == username {
				deposits = append(deposits, *d)
			}
		}
		for _, w := range doc.Withdraws {
			if w.User == username {
				withdraws = append(withdraws, *w)
			}
		}
	})
	if !found {
		return nil, nil, models.ErrUserNotFound
	}
	return deposits, withdraws, nil
}
