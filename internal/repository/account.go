package repository

import (
	"context"

	"rideshare/internal/domain"
)

// AccountRepository defines the persistence operations for accounts.
type AccountRepository interface {
	// Create adds a new account. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, account *domain.Account) error

	// GetByEmail retrieves an account by email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
