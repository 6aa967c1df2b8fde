package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The caller supplies HashedPassword; the plaintext
	// Password field is never persisted.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByVerificationToken retrieves the user holding an outstanding verification token.
	// Returns ErrVerificationTokenNotFound if no user holds it.
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)

	// Update persists the mutable profile fields of an existing user: username,
	// onboarding and verification flags, and the verification token.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a UserStore that executes its statements in tx.
	WithTx(tx *sql.Tx) UserStore
}
