package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
)

// newTestStore opens an in-memory ledger store with no persister.
func newTestStore(t *testing.T) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(context.Background(), nil)
	require.NoError(t, err)
	return store
}

// seedUser inserts a user directly into the document, bypassing
// registration, so order tests do not depend on bcrypt.
func seedUser(t *testing.T, store *ledger.Store, username string, balance int64, referredBy string) {
	t.Helper()

	err := store.Update(context.Background(), func(doc *models.Ledger) error {
		doc.Users[username] = &models.User{
			Username:   username,
			Balance:    balance,
			ReferredBy: referredBy,
			RefCode:    username + "-code",
			CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		return nil
	})
	require.NoError(t, err)
}

func userBalance(t *testing.T, store *ledger.Store, username string) int64 {
	t.Helper()

	var balance int64
	store.View(func(doc *models.Ledger) {
		user, ok := doc.Users[username]
		require.True(t, ok, "user %q not in ledger", username)
		balance = user.Balance
	})
	return balance
}

// fixedClock pins a service's clock so expiry tests are deterministic.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
