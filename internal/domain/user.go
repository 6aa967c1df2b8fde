package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Password and username limits. bcrypt ignores bytes after the 72nd.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxUsernameLength = 150
)

// User is the account that owns tasks. Email is the login identifier; Username is
// for display only.
type User struct {
	ID       uuid.UUID
	Email    string
	Username string

	// Password is the plaintext password. It is only populated on registration or
	// password change and is never persisted.
	Password string

	HashedPassword     string
	OnboardingComplete bool
	EmailVerified      bool
	VerificationToken  *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser creates a validated user with a fresh ID and an email verification token.
func NewUser(email, username, password string) (*User, error) {
	now := time.Now().UTC()
	token := NewVerificationToken()
	user := &User{
		ID:                uuid.New(),
		Email:             NormalizeEmail(email),
		Username:          username,
		Password:          password,
		VerificationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NewVerificationToken returns an opaque single-use token for email verification.
func NewVerificationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user's fields. A plaintext password is only checked when
// present; otherwise a hashed password is required.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required", ErrInvalidPassword)
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}
	return nil
}

// ValidateUsername checks that the username is present and not oversized.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return NewValidationError("username", "cannot be blank", ErrInvalidUsername)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return NewValidationError("username", "must be at most 150 characters", ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword enforces the password length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 8 characters", ErrInvalidPassword)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "must be at most 72 bytes", ErrInvalidPassword)
	}
	return nil
}

// MarkEmailVerified flags the email as verified and consumes the verification token.
func (u *User) MarkEmailVerified(now time.Time) {
	u.EmailVerified = true
	u.VerificationToken = nil
	u.UpdatedAt = now
}

// CompleteOnboarding sets the onboarding flag. The transition is one-way; it
// reports whether anything changed.
func (u *User) CompleteOnboarding(now time.Time) bool {
	if u.OnboardingComplete {
		return false
	}
	u.OnboardingComplete = true
	u.UpdatedAt = now
	return true
}

// IsNewUser reports whether the user still has to go through onboarding.
func (u *User) IsNewUser() bool {
	return !u.OnboardingComplete
}
