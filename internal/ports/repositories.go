package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
)

// AccountRepository defines persistence operations on account identities.
// Status writes stamp updated_at so reconciliation can exclude rows an
// administrator touched after a pass began.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	// RecordLogin marks a successful login: status active, last_login_at stamped.
	RecordLogin(ctx context.Context, accountID uuid.UUID, at time.Time) error
	// SetStatus is the direct administrator override outside the automatic state machine.
	SetStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus, at time.Time) error
	// ActivateByUsername re-activates every account matching the username,
	// reporting how many rows changed. Used by administrator unlock.
	ActivateByUsername(ctx context.Context, username string, at time.Time) (int64, error)
	// BlockActiveByUsernames transitions currently active accounts to blocked.
	BlockActiveByUsernames(ctx context.Context, usernames []string, at time.Time) (int64, error)
	// MarkInactiveBatch applies the inactivity rule to customer accounts in one
	// statement: active, non-null last_login_at older than cutoff, and not
	// modified after passBegan.
	MarkInactiveBatch(ctx context.Context, cutoff, passBegan, at time.Time) (int64, error)
	// RepairNeverLoggedIn corrects accounts wrongly marked inactive while
	// last_login_at is null: sets them active and stamps last_login_at.
	RepairNeverLoggedIn(ctx context.Context, at time.Time) (int64, error)
	ListByStatuses(ctx context.Context, statuses []domain.AccountStatus) ([]domain.Account, error)
}

// LoginAttemptRepository stores the append-only attempt ledger, the sole
// input to lockout decisions and audit listings.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
	CountRecentFailures(ctx context.Context, username string, since time.Time) (int, error)
	// PurgeByUsername deletes all ledger rows for the username (administrator unlock).
	PurgeByUsername(ctx context.Context, username string) (int64, error)
	// ListLockedUsernames aggregates usernames whose failure count inside the
	// window meets the threshold.
	ListLockedUsernames(ctx context.Context, since time.Time, threshold int) ([]domain.LockedUsername, error)
	// ListByUsername returns the newest ledger rows for the username, for audit.
	ListByUsername(ctx context.Context, username string, limit int) ([]domain.LoginAttempt, error)
}

// SessionCreateParams captures the metadata stored on session issuance.
type SessionCreateParams struct {
	AccountID     uuid.UUID
	SourceAddress string
	UserAgent     string
	IssuedAt      time.Time
}

// SessionRepository manages persistent session lifecycle. Expired sessions
// are deleted, never flagged, so the row's presence is the validity signal.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteAllByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// SettingKey names a persisted engine setting.
type SettingKey string

const (
	SettingMaxLoginAttempts SettingKey = "max_login_attempts"
	SettingSessionTimeout   SettingKey = "session_timeout"
	SettingInactivityDays   SettingKey = "inactivity_days"
)

// Valid reports whether the key is one the engine knows how to persist.
// Updates go through a fixed key-to-column mapping, never built SQL.
func (k SettingKey) Valid() bool {
	switch k {
	case SettingMaxLoginAttempts, SettingSessionTimeout, SettingInactivityDays:
		return true
	}
	return false
}

// Settings is the read-only snapshot every engine operation works from.
// It is fetched once per operation so a threshold change mid-operation
// cannot produce torn reads.
type Settings struct {
	MaxLoginAttempts int
	SessionTimeout   time.Duration
	InactivityDays   int
}

// DefaultSettings are the typed fallbacks for absent keys.
func DefaultSettings() Settings {
	return Settings{
		MaxLoginAttempts: 5,
		SessionTimeout:   30 * time.Minute,
		InactivityDays:   30,
	}
}

// SettingsStore resolves persisted settings. Missing keys resolve to
// defaults, never an error.
type SettingsStore interface {
	Snapshot(ctx context.Context) (Settings, error)
	Update(ctx context.Context, key SettingKey, value int) error
}

// LoginTxRepositories are the repositories visible inside a serialized
// login-flow section. They are bound to the section's transaction.
type LoginTxRepositories struct {
	Accounts AccountRepository
	Attempts LoginAttemptRepository
}

// TxRunner scopes repository work to one transaction. WithUsernameLock
// additionally serializes concurrent sections for the same username
// (count failures, append attempt, maybe transition status) while leaving
// different usernames free to proceed in parallel.
type TxRunner interface {
	WithUsernameLock(ctx context.Context, username string, fn func(LoginTxRepositories) error) error
	WithTx(ctx context.Context, fn func(LoginTxRepositories) error) error
}
