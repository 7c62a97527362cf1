package repository

import (
	"context"
	"time"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts the user and every phone in user.Phones atomically.
	// A duplicate email is reported as apperrors.ErrDuplicateUser.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email address, without phones.
	// It returns apperrors.ErrNotFound when no user matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether a user with the email is stored.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin records the time of the user's latest login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// PhoneRepository defines the interface for phone persistence operations.
type PhoneRepository interface {
	// ListByUserID returns the phones owned by the user in insertion order.
	ListByUserID(ctx context.Context, userID string) ([]domain.Phone, error)
}

// EmailReservation holds short-lived claims on emails so that concurrent
// sign-ups for the same address fail fast before touching the store.
type EmailReservation interface {
	// Reserve claims email. It returns false when another caller holds it.
	Reserve(ctx context.Context, email string) (bool, error)

	// Release drops a claim taken by Reserve.
	Release(ctx context.Context, email string) error
}
