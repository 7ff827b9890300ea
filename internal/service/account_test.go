package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huyndao/robux-exchange/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	store := newTestStore(t)
	svc := NewAccountService(store)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "s3cret", "")
	require.NoError(t, err)
	require.Equal(t, "alice", created.Username)
	require.NotEmpty(t, created.RefCode)
	require.NotEqual(t, "s3cret", created.PasswordHash)

	user, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	svc := NewAccountService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other", "")
	require.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestRegisterLinksReferrer(t *testing.T) {
	store := newTestStore(t)
	svc := NewAccountService(store)
	ctx := context.Background()

	referrer, err := svc.Register(ctx, "referrer", "s3cret", "")
	require.NoError(t, err)

	referred, err := svc.Register(ctx, "newbie", "s3cret", referrer.RefCode)
	require.NoError(t, err)
	require.Equal(t, "referrer", referred.ReferredBy)

	// Unknown codes are ignored rather than rejected.
	loner, err := svc.Register(ctx, "loner", "s3cret", "no-such-code")
	require.NoError(t, err)
	require.Empty(t, loner.ReferredBy)
}
