package postgres

import (
	"context"

	"github.com/tripveo/account-security-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Accounts ports.AccountRepository
	Attempts ports.LoginAttemptRepository
	Sessions ports.SessionRepository
	Settings ports.SettingsStore
	Tx       ports.TxRunner
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts: &accountRepository{db: db},
		Attempts: &loginAttemptRepository{db: db},
		Sessions: &sessionRepository{db: db},
		Settings: &settingsRepository{db: db},
		Tx:       &txRunner{db: db},
	}
}

type txRunner struct {
	db *gorm.DB
}

// WithUsernameLock serializes the callback against every other section
// holding the same username, via a transaction-scoped advisory lock.
// Different usernames hash to different locks and do not block each other.
func (t *txRunner) WithUsernameLock(ctx context.Context, username string, fn func(ports.LoginTxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", username).Error; err != nil {
			return err
		}
		return fn(ports.LoginTxRepositories{
			Accounts: &accountRepository{db: tx},
			Attempts: &loginAttemptRepository{db: tx},
		})
	})
}

func (t *txRunner) WithTx(ctx context.Context, fn func(ports.LoginTxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.LoginTxRepositories{
			Accounts: &accountRepository{db: tx},
			Attempts: &loginAttemptRepository{db: tx},
		})
	})
}
