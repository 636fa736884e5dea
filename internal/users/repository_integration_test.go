//go:build integration

package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralscript/viralscript/internal/database/dbtest"
)

func TestPostgresRepository(t *testing.T) {
	repo := NewRepository(dbtest.NewPool(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	user := &User{
		ID: uuid.New(), Email: "repo@example.com", Name: "Repo", PasswordHash: "hash",
		Role: RoleUser, LastReset: now, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "repo@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Repo", got.Name)
	assert.True(t, now.Equal(got.LastReset))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.ExistsByEmail(ctx, "repo@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	dup := *user
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrEmailTaken)
}
