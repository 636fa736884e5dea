package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create provisions an account with an empty generation counter. Emails are
// stored lowercased.
func (s *Service) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		LastReset:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	exists, err := s.repo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
