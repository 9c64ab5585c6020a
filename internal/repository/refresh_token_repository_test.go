package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	truncateAll(t)
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "alice@example.com")
	now := time.Now().UTC().Truncate(time.Microsecond)

	token := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     "live-token",
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, token))

	found, err := repo.FindByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	assert.False(t, found.Revoked)

	require.NoError(t, repo.Revoke(ctx, "live-token"))

	_, err = repo.FindByToken(ctx, "live-token")
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestRefreshTokenRepository_UnknownToken(t *testing.T) {
	truncateAll(t)
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	_, err := repo.FindByToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	assert.ErrorIs(t, repo.Revoke(ctx, "no-such-token"), ErrRefreshTokenNotFound)
}
