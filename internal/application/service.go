package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripveo/account-security-service/internal/ports"
)

// lockoutWindow is the trailing interval over which failed attempts count
// toward the blocking threshold. The window is deliberately a constant,
// not a setting; see DESIGN.md.
const lockoutWindow = 15 * time.Minute

// dummyPasswordHash is compared against when the username does not resolve,
// so unknown-user and wrong-password attempts cost the same. The comparison
// result is discarded.
const dummyPasswordHash = "$2a$12$K3JNi5xUf0sWp3EerDrnvuBQt3g3rp9BUXn1tOp8M0iTAa7RWAK0a"

// Config carries the runtime knobs that are not persisted settings.
type Config struct {
	ServiceID string
	// TokenTTL bounds the signed bearer token. The idle timeout from the
	// settings store governs session validity independently.
	TokenTTL time.Duration
}

// Service composes credential verification, the attempt ledger, lockout
// policy, the status engine, and session guarding behind the two calls the
// rest of the back office uses: Login and CheckSession.
type Service struct {
	cfg         Config
	accounts    ports.AccountRepository
	attempts    ports.LoginAttemptRepository
	sessions    ports.SessionRepository
	settings    ports.SettingsStore
	tx          ports.TxRunner
	revocations ports.SessionRevocationStore
	hasher      ports.PasswordHasher
	tokenSigner ports.TokenSigner
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Accounts    ports.AccountRepository
	Attempts    ports.LoginAttemptRepository
	Sessions    ports.SessionRepository
	Settings    ports.SettingsStore
	Tx          ports.TxRunner
	Revocations ports.SessionRevocationStore
	Hasher      ports.PasswordHasher
	TokenSigner ports.TokenSigner
	// Now overrides the clock; nil means UTC wall time.
	Now func() time.Time
}

func NewService(deps Dependencies) *Service {
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:         deps.Config,
		accounts:    deps.Accounts,
		attempts:    deps.Attempts,
		sessions:    deps.Sessions,
		settings:    deps.Settings,
		tx:          deps.Tx,
		revocations: deps.Revocations,
		hasher:      deps.Hasher,
		tokenSigner: deps.TokenSigner,
		nowFn:       nowFn,
	}
}

// snapshot fetches the settings once for the calling operation. Absent keys
// already resolve to defaults inside the store; an error here is a store
// outage, and each operation decides whether that fails closed or falls
// back to defaults.
func (s *Service) snapshot(ctx context.Context) (ports.Settings, error) {
	return s.settings.Snapshot(ctx)
}

func (s *Service) logger() *slog.Logger {
	return slog.Default().With(
		"service", s.cfg.ServiceID,
		"module", "application",
		"layer", "application",
	)
}
