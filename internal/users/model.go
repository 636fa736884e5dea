// Package users stores the accounts that may log in and generate scripts.
package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmailTaken = errors.New("email already registered")

const RoleUser = "user"

type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	GenerationsUsed int       `json:"generations_used"`
	LastReset       time.Time `json:"last_reset"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
