package repository

import (
	"context"
	"time"

	"github.com/dentallab/backend/internal/domain"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create persists a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by id, roles included; nil when absent
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email, roles included; nil when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByEmail checks whether a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpdateLastLogin stamps the last successful login
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// SetActive flips the active flag
	SetActive(ctx context.Context, id string, active bool) error
	// SetResetToken stores the reset-token hash and expiry, overwriting
	// any previous token
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// GetByResetToken finds the user whose reset-token hash matches and
	// whose expiry is still in the future; nil when no such user
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	// ResetPassword stores the new hash and clears both reset-token
	// fields in a single statement
	ResetPassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepository defines data access for refresh-token sessions.
type SessionRepository interface {
	// Create persists a new session
	Create(ctx context.Context, session *domain.Session) error
	// GetByRefreshToken retrieves an unexpired session by its refresh
	// token; nil when absent or expired
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// Delete removes a single session
	Delete(ctx context.Context, id string) error
	// DeleteByUserID removes every session owned by the user
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired removes sessions past their expiry, returning the
	// number of rows purged
	DeleteExpired(ctx context.Context) (int64, error)
}

// RoleRepository defines data access for the role catalog and the
// user-role join table.
type RoleRepository interface {
	// GetByName retrieves a role by name; nil when absent
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	// AttachToUser links a role to a user; linking twice is a no-op
	AttachToUser(ctx context.Context, userID, roleID string) error
	// ListByUser returns the role names attached to a user
	ListByUser(ctx context.Context, userID string) ([]string, error)
}

// CaseFilter narrows case listings.
type CaseFilter struct {
	Status    domain.CaseStatus
	DentistID string
}

// CaseRepository defines data access for lab cases.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, filter *CaseFilter) ([]*domain.Case, error)
	UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error
}

// DentistRepository defines data access for dentists.
type DentistRepository interface {
	Create(ctx context.Context, d *domain.Dentist) error
	GetByID(ctx context.Context, id string) (*domain.Dentist, error)
	List(ctx context.Context) ([]*domain.Dentist, error)
}
