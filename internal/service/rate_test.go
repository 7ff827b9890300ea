package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateDefaultsUntilSet(t *testing.T) {
	store := newTestStore(t)
	svc := NewRateService(store)
	ctx := context.Background()

	require.Equal(t, int64(65), svc.Rate(ctx))

	require.NoError(t, svc.SetRate(ctx, 72))
	require.Equal(t, int64(72), svc.Rate(ctx))
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	store := newTestStore(t)
	svc := NewRateService(store)
	ctx := context.Background()

	require.Error(t, svc.SetRate(ctx, 0))
	require.Error(t, svc.SetRate(ctx, -5))
	require.Equal(t, int64(65), svc.Rate(ctx))
}
