package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/models"
)

func TestReferralBonusPaidOnceOnFirstDeposit(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "referrer", 0, "")
	seedUser(t, store, "newbie", 0, "referrer")
	svc := NewOrderService(store)
	ctx := context.Background()

	first, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "newbie", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	second, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "newbie", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)

	_, err = svc.ApproveDeposit(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, int64(domain.ReferralBonus), userBalance(t, store, "referrer"))

	// Second successful deposit pays nothing.
	_, err = svc.ApproveDeposit(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, int64(domain.ReferralBonus), userBalance(t, store, "referrer"))

	store.View(func(doc *models.Ledger) {
		require.Len(t, doc.Bonuses, 1)
		require.Equal(t, "referral", doc.Bonuses[0].Source)
		require.Equal(t, "referrer", doc.Bonuses[0].User)
		require.Equal(t, "newbie", doc.Bonuses[0].Ref)
	})
}

func TestReferralBonusSkipsUnreferredUser(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "loner", 0, "")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "loner", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = svc.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)

	store.View(func(doc *models.Ledger) {
		require.Empty(t, doc.Bonuses)
	})
}

func TestReferralBonusSkipsMissingReferrer(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "orphan", 0, "deleted-referrer")
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateDeposit(ctx, CreateDepositInput{User: "orphan", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)

	_, err = svc.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(65), userBalance(t, store, "orphan"))
}

func TestListReferralsDerivedState(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "referrer", 0, "")
	seedUser(t, store, "beta", 0, "referrer")
	seedUser(t, store, "alpha", 0, "referrer")
	orders := NewOrderService(store)
	referrals := NewReferralService(store)
	ctx := context.Background()

	order, err := orders.CreateDeposit(ctx, CreateDepositInput{User: "alpha", Amount: 10_000, Type: domain.OrderTypeQR})
	require.NoError(t, err)
	_, err = orders.ApproveDeposit(ctx, order.ID)
	require.NoError(t, err)

	records := referrals.ListReferrals(ctx)
	require.Len(t, records, 2)
	require.Equal(t, "alpha", records[0].Referred)
	require.True(t, records[0].FirstDepositDone)
	require.True(t, records[0].BonusPaid)
	require.Equal(t, "beta", records[1].Referred)
	require.False(t, records[1].FirstDepositDone)
	require.False(t, records[1].BonusPaid)
}

func TestAddBonusRecordsGrant(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice", 10, "")
	svc := NewReferralService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddBonus(ctx, "alice", 40))
	require.Equal(t, int64(50), userBalance(t, store, "alice"))

	store.View(func(doc *models.Ledger) {
		require.Len(t, doc.Bonuses, 1)
		require.Equal(t, "admin", doc.Bonuses[0].Source)
		require.Equal(t, int64(40), doc.Bonuses[0].Amount)
	})

	require.ErrorIs(t, svc.AddBonus(ctx, "ghost", 10), models.ErrUserNotFound)
}
