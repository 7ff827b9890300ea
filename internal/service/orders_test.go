package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/models"
)

func TestCreateDepositQuotesCurrentRate(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{
		User:   "alice",
		Amount: 10_000,
		Type:   domain.OrderTypeQR,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, int64(65), order.Robux)

	// The quote never touches the balance.
	require.Equal(t, int64(0), userBalance(t, store, "alice"))
}

func TestCreateDepositUnknownUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)

	_, err := svc.CreateDeposit(context.Background(), CreateDepositInput{
		User:   "ghost",
		Amount: 10_000,
		Type:   domain.OrderTypeQR,
	})
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestCreateWithdrawChecksBalance(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 100, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	_, err := svc.CreateWithdraw(ctx, "alice", 101, "roblox-alice")
	require.ErrorIs(t, err, models.ErrInsufficientBalance)

	order, err := svc.CreateWithdraw(ctx, "alice", 100, "roblox-alice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)

	// Creation only reserves logically; the debit happens at approval.
	require.Equal(t, int64(100), userBalance(t, store, "alice"))
}

func TestApproveDepositRepricesAtCurrentRate(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	orders := NewOrderService(store)
	rates := NewRateService(store)
	ctx := context.Background()

	order, err := orders.CreateDeposit(ctx, CreateDepositInput{
		User:   "alice",
		Amount: 10_000,
		Type:   domain.OrderTypeQR,
	})
	require.NoError(t, err)
	require.Equal(t, int64(65), order.Robux)

	// Rate changes between creation and approval; the approval wins.
	require.NoError(t, rates.SetRate(ctx, 80))

	approved, err := orders.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, approved.Status)
	require.Equal(t, int64(80), approved.Robux)
	require.Equal(t, int64(80), userBalance(t, store, "alice"))
}

func TestApproveDepositCardDiscount(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{
		User:     "alice",
		Amount:   10_000,
		Type:     domain.OrderTypeCard,
		Seri:     "123456789",
		Code:     "987654321",
		CardType: "VIETTEL",
	})
	require.NoError(t, err)

	approved, err := svc.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)
	// 10000 at rate 65 is 65 robux, minus the 20% Viettel fee, floored.
	require.Equal(t, int64(52), approved.Robux)
	require.Equal(t, int64(52), userBalance(t, store, "alice"))
}

func TestApproveDepositOnlyOnce(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{
		User:   "alice",
		Amount: 10_000,
		Type:   domain.OrderTypeQR,
	})
	require.NoError(t, err)

	_, err = svc.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.ApproveDeposit(ctx, order.ID)
	require.ErrorIs(t, err, models.ErrOrderNotPending)
	require.Equal(t, int64(65), userBalance(t, store, "alice"))
}

func TestApproveDepositUnknownOrder(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)

	_, err := svc.ApproveDeposit(context.Background(), 12345)
	require.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestApproveWithdrawDebitsBalance(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 200, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateWithdraw(ctx, "alice", 150, "roblox-alice")
	require.NoError(t, err)

	approved, err := svc.ApproveWithdraw(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, approved.Status)
	require.Equal(t, int64(50), userBalance(t, store, "alice"))
}

func TestApproveWithdrawInsufficientAtApproval(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 200, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	first, err := svc.CreateWithdraw(ctx, "alice", 150, "roblox-alice")
	require.NoError(t, err)
	second, err := svc.CreateWithdraw(ctx, "alice", 150, "roblox-alice")
	require.NoError(t, err)

	_, err = svc.ApproveWithdraw(ctx, first.ID)
	require.NoError(t, err)

	// Both orders fit the balance at creation, but not together.
	_, err = svc.ApproveWithdraw(ctx, second.ID)
	require.ErrorIs(t, err, models.ErrInsufficientBalance)
	require.Equal(t, int64(50), userBalance(t, store, "alice"))
}

func TestRejectDeletesPendingOnly(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	pending, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	resolved, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 20_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = svc.ApproveDeposit(ctx, resolved.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, pending.ID, domain.QueueDeposits))

	// Already-approved orders and unknown ids are silent no-ops.
	require.NoError(t, svc.Reject(ctx, resolved.ID, domain.QueueDeposits))
	require.NoError(t, svc.Reject(ctx, 99999, domain.QueueWithdraws))

	store.View(func(doc *models.Ledger) {
		require.Len(t, doc.Deposits, 1)
		require.Equal(t, resolved.ID, doc.Deposits[0].ID)
		require.Equal(t, domain.StatusSuccess, doc.Deposits[0].Status)
	})
	require.Equal(t, int64(130), userBalance(t, store, "alice"))
}

func TestSweepExpiredStrictCutoff(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 500, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = fixedClock(base)

	stale, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	staleWithdraw, err := svc.CreateWithdraw(ctx, "alice", 10, "roblox-alice")
	require.NoError(t, err)

	svc.now = fixedClock(base.Add(time.Hour))
	fresh, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)

	// Exactly at the cutoff the stale pair survives; strictly past it fails.
	n, err := svc.SweepExpired(ctx, base.Add(domain.PendingOrderTTL))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = svc.SweepExpired(ctx, base.Add(domain.PendingOrderTTL+time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	store.View(func(doc *models.Ledger) {
		require.Equal(t, domain.StatusFailed, doc.FindDeposit(stale.ID).Status)
		require.Equal(t, domain.StatusFailed, doc.FindWithdraw(staleWithdraw.ID).Status)
		require.Equal(t, domain.StatusPending, doc.FindDeposit(fresh.ID).Status)
	})

	// A second sweep at the same instant is a no-op.
	n, err = svc.SweepExpired(ctx, base.Add(domain.PendingOrderTTL+time.Millisecond))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSweepLeavesResolvedOrders(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = fixedClock(base)

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = svc.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)

	n, err := svc.SweepExpired(ctx, base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)

	store.View(func(doc *models.Ledger) {
		require.Equal(t, domain.StatusSuccess, doc.FindDeposit(order.ID).Status)
	})
}

func TestHistorySweepsFirst(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = fixedClock(base)

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)

	svc.now = fixedClock(base.Add(domain.PendingOrderTTL + time.Minute))
	deposits, withdraws, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, withdraws)
	require.Len(t, deposits, 1)
	require.Equal(t, order.ID, deposits[0].ID)
	require.Equal(t, domain.StatusFailed, deposits[0].Status)
}

func TestHistoryUnknownUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)

	_, _, err := svc.History(context.Background(), "ghost")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPendingOrdersFiltersQueues(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 100, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	dep, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = svc.CreateWithdraw(ctx, "alice", 50, "roblox-alice")
	require.NoError(t, err)
	resolved, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = svc.ApproveDeposit(ctx, resolved.ID)
	require.NoError(t, err)

	deposits, withdraws, err := svc.PendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, dep.ID, deposits[0].ID)
	require.Len(t, withdraws, 1)
}
