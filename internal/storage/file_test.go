package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/models"
)

func TestFilePersister_LoadMissingFile(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "ledger.json"))

	ledger, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ledger)
}

func TestFilePersister_SaveLoadRoundTrip(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "data", "ledger.json"))
	ctx := context.Background()

	ledger := models.NewLedger()
	ledger.Rate = 70
	ledger.Seq = 3
	ledger.Users["trang"] = &models.User{
		Username:  "trang",
		Balance:   120,
		RefCode:   "abc123",
		CreatedAt: time.Now().UTC(),
	}
	ledger.Deposits = append(ledger.Deposits, &models.DepositOrder{
		ID:     1,
		User:   "trang",
		Amount: 10_000,
		Robux:  65,
		Type:   domain.OrderTypeQR,
		Status: domain.StatusPending,
		Time:   time.Now().UTC(),
	})

	require.NoError(t, p.Save(ctx, ledger))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(70), loaded.Rate)
	assert.Equal(t, int64(3), loaded.Seq)
	require.Contains(t, loaded.Users, "trang")
	assert.Equal(t, int64(120), loaded.Users["trang"].Balance)
	require.Len(t, loaded.Deposits, 1)
	assert.Equal(t, domain.StatusPending, loaded.Deposits[0].Status)
}

func TestFilePersister_SaveOverwrites(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "ledger.json"))
	ctx := context.Background()

	first := models.NewLedger()
	first.Rate = 65
	require.NoError(t, p.Save(ctx, first))

	second := models.NewLedger()
	second.Rate = 80
	require.NoError(t, p.Save(ctx, second))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(80), loaded.Rate)
}
