package quota

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQuotaExceeded = errors.New("monthly generation quota exceeded")
	ErrUserNotFound  = errors.New("user not found")
	ErrRateLimited   = errors.New("too many generation requests")
)

// UserQuotaState is the quota slice of a users row.
type UserQuotaState struct {
	UserID          uuid.UUID
	GenerationsUsed int
	LastReset       time.Time
}

// Status is the quota view returned to clients.
type Status struct {
	GenerationsUsed      int       `json:"generations_used"`
	GenerationsLimit     int       `json:"generations_limit"`
	GenerationsRemaining int       `json:"generations_remaining"`
	WithinQuota          bool      `json:"within_quota"`
	ResetDate            time.Time `json:"reset_date"`
}

// Reservation is one booked generation. It remembers the month it was taken
// in so a refund never lands on a later month's counter.
type Reservation struct {
	UserID uuid.UUID
	Month  time.Time
}

// ExceededError carries the status that caused a rejection.
type ExceededError struct {
	Status *Status
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Limite mensal de gerações atingido (%d/%d). Novo ciclo em %s",
		e.Status.GenerationsUsed, e.Status.GenerationsLimit, e.Status.ResetDate.Format("02/01/2006"))
}

func (e *ExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// monthStart returns the first instant of t's calendar month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// nextMonthStart returns the first instant of the month after t's, in UTC.
func nextMonthStart(t time.Time) time.Time {
	return monthStart(t).AddDate(0, 1, 0)
}
