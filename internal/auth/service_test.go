package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mgr := NewJWTManager("access-secret-32-chars-long!!!!!", "refresh-secret-32-chars-long!!!!", 15*time.Minute, time.Hour)
	return NewService(mgr, rdb), mr
}

func TestService_RefreshRotates(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-1", "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	rotated, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	claims, err := svc.ValidateAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestService_RefreshExpiresWithTTL(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-1", "ana@example.com")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.Error(t, err)
}

func TestService_Logout(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	for range 3 {
		_, err := svc.GenerateTokens(ctx, "user-1", "a@example.com")
		require.NoError(t, err)
	}
	_, err := svc.GenerateTokens(ctx, "user-2", "b@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "user-1"))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "refresh:user-2:")
}

func TestService_RefreshRejectsGarbage(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.RefreshTokens(context.Background(), "not-a-token")
	assert.Error(t, err)
}
