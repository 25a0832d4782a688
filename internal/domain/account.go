package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the derived operational state of an account.
// It is never edited directly by callers; only the engine's own
// transitions and explicit administrator actions may change it.
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
	StatusBlocked  AccountStatus = "blocked"
)

// Valid reports whether the value is one of the known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

// AccountRole partitions back-office access.
type AccountRole string

const (
	RoleMainAdmin   AccountRole = "main_admin"
	RoleBranchAdmin AccountRole = "branch_admin"
	RoleCustomer    AccountRole = "customer"
)

// Account is the authentication identity aggregate for the back office.
// BranchID is set only for branch administrators; LastLoginAt stays nil
// until the first successful login so provisioning is distinguishable
// from dormancy.
type Account struct {
	AccountID    uuid.UUID
	Username     string
	PasswordHash string
	Role         AccountRole
	BranchID     *uuid.UUID
	Status       AccountStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginAttempt is one row of the append-only attempt ledger.
// Username is recorded as typed; AccountID stays nil when the username
// does not resolve so unknown-user probing is still auditable.
type LoginAttempt struct {
	ID            int64
	Username      string
	AccountID     *uuid.UUID
	SourceAddress string
	Succeeded     bool
	OccurredAt    time.Time
}

// Session models an issued login session. Idle expiry is evaluated
// against LastActivityAt, which only ever moves forward.
type Session struct {
	SessionID      uuid.UUID
	AccountID      uuid.UUID
	SourceAddress  string
	UserAgent      string
	IssuedAt       time.Time
	LastActivityAt time.Time
}

// LockedUsername is the ledger aggregate behind the admin lockout listing.
type LockedUsername struct {
	Username       string
	FailedAttempts int
	LastAttemptAt  time.Time
}
