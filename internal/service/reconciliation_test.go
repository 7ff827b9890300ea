package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/models"
)

func TestReconciliationCleanLedger(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "referrer", 0, "")
	seedUser(t, store, "alice", 0, "referrer")
	orders := NewOrderService(store)
	referrals := NewReferralService(store)
	svc := NewReconciliationService(store)
	ctx := context.Background()

	dep, err := orders.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 20_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = orders.ApproveDeposit(ctx, dep.ID)
	require.NoError(t, err)

	wd, err := orders.CreateWithdraw(ctx, "alice", 30, "roblox-alice")
	require.NoError(t, err)
	_, err = orders.ApproveWithdraw(ctx, wd.ID)
	require.NoError(t, err)

	require.NoError(t, referrals.AddBonus(ctx, "alice", 7))

	// Deposits, withdraws, the referral bonus and the admin grant all
	// flow through the lifecycle engine, so nothing drifts.
	drifts, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)
}

func TestReconciliationDetectsDrift(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 0, "")
	orders := NewOrderService(store)
	svc := NewReconciliationService(store)
	ctx := context.Background()

	dep, err := orders.CreateDeposit(ctx, CreateDepositInput{User: "alice", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = orders.ApproveDeposit(ctx, dep.ID)
	require.NoError(t, err)

	// Corrupt the balance outside the lifecycle engine.
	err = store.Update(ctx, func(doc *models.Ledger) error {
		doc.Users["alice"].Balance += 999
		return nil
	})
	require.NoError(t, err)

	drifts, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, "alice", drifts[0].User)
	require.Equal(t, int64(65+999), drifts[0].Stored)
	require.Equal(t, int64(65), drifts[0].Expected)
}
