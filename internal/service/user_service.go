package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UserService provides account operations: registration, credential checks,
// profile reads and updates, email verification and onboarding.
type UserService interface {
	// Register creates an account with a hashed password and an outstanding
	// verification token. Returns store.ErrEmailExists for a taken email.
	Register(ctx context.Context, email, username, password string) (*domain.User, error)

	// Authenticate returns the user whose email and password match, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateUsername changes the display name of a user.
	UpdateUsername(ctx context.Context, userID uuid.UUID, username string) (*domain.User, error)

	// VerifyEmail consumes a verification token and marks the holder's email verified.
	// Returns store.ErrVerificationTokenNotFound for an unknown or used token.
	VerifyEmail(ctx context.Context, token string) error

	// CompleteOnboarding marks the user's onboarding complete. Repeat calls are no-ops.
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, fmt.Errorf("userStore cannot be nil")
	}
	if hasher == nil || verifier == nil {
		return nil, fmt.Errorf("password hasher and verifier cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &userServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		db:        db,
		logger:    logger.With(slog.String("component", "user_service")),
		now:       time.Now,
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, username, password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("registration rejected: email already exists")
		} else {
			s.logger.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	// Delivery of the verification email is out of scope; only the issuance is recorded.
	s.logger.Info("user registered, verification token issued",
		slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login failed: password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateUsername(
	ctx context.Context,
	userID uuid.UUID,
	username string,
) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.updateUser(ctx, userID, func(user *domain.User) bool {
		user.Username = username
		user.UpdatedAt = s.now().UTC()
		updated = user
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	return updated, nil
}

func (s *userServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByVerificationToken(ctx, token)
		if err != nil {
			return err
		}
		user.MarkEmailVerified(s.now().UTC())
		return txStore.Update(ctx, user)
	})
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	s.logger.Info("email verified")
	return nil
}

func (s *userServiceImpl) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var updated *domain.User
	err := s.updateUser(ctx, userID, func(user *domain.User) bool {
		updated = user
		return user.CompleteOnboarding(s.now().UTC())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return updated, nil
}

// updateUser loads the user, applies mutate and persists the result when mutate
// reports a change, all within one transaction.
func (s *userServiceImpl) updateUser(ctx context.Context, userID uuid.UUID, mutate func(*domain.User) bool) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !mutate(user) {
			return nil
		}
		return txStore.Update(ctx, user)
	})
}
