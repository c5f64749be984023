package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryDB())

	account := &models.AccountRecord{User: models.User{Email: " A@B.c ", Tier: models.TierFree}}
	require.NoError(t, repo.Create(ctx, account))
	assert.Equal(t, int64(1), account.ID)

	err := repo.Create(ctx, &models.AccountRecord{User: models.User{Email: "a@b.c"}})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "a@B.C")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@b.c", got.Email)

	require.NoError(t, repo.UpdateTier(ctx, 1, models.TierPro))
	got, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, got.Tier)

	missing, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAuthRepositoryCleanup(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthRepository(NewMemoryDB())
	now := time.Now()

	require.NoError(t, repo.SavePending(ctx, &models.PendingRegistration{Email: "old@x.io", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.SavePending(ctx, &models.PendingRegistration{Email: "new@x.io", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.SavePending(ctx, &models.PendingRegistration{Email: "done@x.io", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.MarkVerified(ctx, "done@x.io"))

	removed, err := repo.CleanupExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	reg, err := repo.GetPending(ctx, "old@x.io")
	require.NoError(t, err)
	assert.Nil(t, reg)

	reg, err = repo.GetPending(ctx, "done@x.io")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.True(t, reg.Verified)
}

func TestPaymentSettleOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(NewMemoryDB())
	require.NoError(t, repo.Create(ctx, &models.PaymentRecord{ID: "p1", Status: models.PaymentPending}))

	p, changed, err := repo.Settle(ctx, "p1", models.PaymentSucceeded, true, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, p.Paid)

	p, changed, err = repo.Settle(ctx, "p1", models.PaymentCanceled, false, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.PaymentSucceeded, p.Status)

	_, _, err = repo.Settle(ctx, "nope", models.PaymentCanceled, false, nil)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestUsageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUsageRepository(NewMemoryDB())
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 2; i++ {
		n, ok, err := repo.Increment(ctx, 1, day, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, n)
	}
	n, ok, err := repo.Increment(ctx, 1, day, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, n)

	today, err := repo.Today(ctx, 1, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, today, "counter resets on a new day")
}
