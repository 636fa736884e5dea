package users

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[uuid.UUID]*User)}
}

func (m *memRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := m.GetByEmail(ctx, email)
	return u != nil, err
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	user, err := svc.Create(ctx, "  Ana@Example.com ", " Ana Souza ", "hash")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana Souza", user.Name)
	assert.Equal(t, RoleUser, user.Role)
	assert.Zero(t, user.GenerationsUsed)
	assert.False(t, user.LastReset.IsZero())

	found, err := svc.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func TestService_CreateDuplicate(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "dup@example.com", "Primeiro", "hash")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "DUP@example.com", "Segundo", "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_GetByIDMissing(t *testing.T) {
	user, err := NewService(newMemRepo()).GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, user)
}
