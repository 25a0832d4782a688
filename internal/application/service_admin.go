package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
	"github.com/tripveo/account-security-service/internal/ports"
)

// Unlock purges the attempt ledger for the username and re-activates every
// matching account in one serialized transaction, so a login racing the
// unlock observes either the locked state or the clean one, never a mix.
// Zero affected accounts is a valid outcome.
func (s *Service) Unlock(ctx context.Context, username string) (UnlockResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return UnlockResponse{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	var res UnlockResponse
	err := s.tx.WithUsernameLock(ctx, username, func(r ports.LoginTxRepositories) error {
		now := s.nowFn()
		purged, err := r.Attempts.PurgeByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("%w: purge ledger: %v", domain.ErrStoreUnavailable, err)
		}
		affected, err := r.Accounts.ActivateByUsername(ctx, username, now)
		if err != nil {
			return fmt.Errorf("%w: activate account: %v", domain.ErrStoreUnavailable, err)
		}
		res = UnlockResponse{AffectedAccounts: affected, PurgedAttempts: purged}
		return nil
	})
	if err != nil {
		return UnlockResponse{}, err
	}

	s.logger().InfoContext(ctx, "account unlocked",
		"operation", "unlock",
		"outcome", "success",
		"username", username,
		"affected_accounts", res.AffectedAccounts,
		"purged_attempts", res.PurgedAttempts,
	)
	return res, nil
}

// ListLockedAccounts aggregates usernames currently at or above the failure
// threshold within the lockout window.
func (s *Service) ListLockedAccounts(ctx context.Context) ([]LockedAccountItem, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load settings: %v", domain.ErrStoreUnavailable, err)
	}

	rows, err := s.attempts.ListLockedUsernames(ctx, s.nowFn().Add(-lockoutWindow), snap.MaxLoginAttempts)
	if err != nil {
		return nil, fmt.Errorf("%w: list locked usernames: %v", domain.ErrStoreUnavailable, err)
	}

	result := make([]LockedAccountItem, 0, len(rows))
	for _, row := range rows {
		result = append(result, LockedAccountItem{
			Username:       row.Username,
			FailedAttempts: row.FailedAttempts,
			LastAttemptAt:  row.LastAttemptAt,
		})
	}
	return result, nil
}

// ListDormantAccounts returns inactive and blocked accounts with the days
// since their last login. Accounts that never logged in report zero days.
func (s *Service) ListDormantAccounts(ctx context.Context) ([]DormantAccountItem, error) {
	accounts, err := s.accounts.ListByStatuses(ctx, []domain.AccountStatus{domain.StatusInactive, domain.StatusBlocked})
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", domain.ErrStoreUnavailable, err)
	}

	now := s.nowFn()
	result := make([]DormantAccountItem, 0, len(accounts))
	for _, account := range accounts {
		days := 0
		if account.LastLoginAt != nil {
			days = int(now.Sub(*account.LastLoginAt).Hours() / 24)
		}
		result = append(result, DormantAccountItem{Account: toAccountInfo(account), DaysInactive: days})
	}
	return result, nil
}

// LoginHistory returns the newest ledger entries for a username, the raw
// audit trail behind the lockout decisions.
func (s *Service) LoginHistory(ctx context.Context, username string, limit int) ([]LoginAttemptItem, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	rows, err := s.attempts.ListByUsername(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list attempts: %v", domain.ErrStoreUnavailable, err)
	}

	result := make([]LoginAttemptItem, 0, len(rows))
	for _, row := range rows {
		result = append(result, LoginAttemptItem{
			Username:      row.Username,
			AccountID:     row.AccountID,
			SourceAddress: row.SourceAddress,
			Succeeded:     row.Succeeded,
			OccurredAt:    row.OccurredAt,
		})
	}
	return result, nil
}

// SetStatus is the administrator override outside the automatic state
// machine. It stamps the account's updated_at so a reconciliation pass that
// began earlier will not downgrade the fresh decision.
func (s *Service) SetStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus) (AccountInfo, error) {
	if !status.Valid() {
		return AccountInfo{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	now := s.nowFn()
	if err := s.accounts.SetStatus(ctx, accountID, status, now); err != nil {
		return AccountInfo{}, err
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return AccountInfo{}, err
	}

	// Blocking an account cuts its live sessions immediately; the bearer
	// tokens die with the session records.
	if status == domain.StatusBlocked {
		if dropped, dropErr := s.sessions.DeleteAllByAccount(ctx, accountID); dropErr != nil {
			s.logger().ErrorContext(ctx, "session sweep after block failed",
				"operation", "set_status",
				"outcome", "degraded",
				"account_id", accountID,
				"error", dropErr,
			)
		} else if dropped > 0 {
			s.logger().InfoContext(ctx, "sessions destroyed for blocked account",
				"operation", "set_status",
				"outcome", "success",
				"account_id", accountID,
				"sessions", dropped,
			)
		}
	}

	s.logger().InfoContext(ctx, "account status overridden",
		"operation", "set_status",
		"outcome", "success",
		"account_id", accountID,
		"status", status,
	)
	return toAccountInfo(account), nil
}

// ReconcileAll recomputes customer account status from the ledger and
// last-login recency in a single transaction: no partial status changes
// survive a store failure, and running the pass twice with no intervening
// logins leaves statuses unchanged.
//
// Blocked stays sticky: the pass only ever writes blocked or inactive,
// never resurrects, and never touches rows whose last_login_at or
// updated_at moved after the pass began.
func (s *Service) ReconcileAll(ctx context.Context) (ReconcileResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return ReconcileResponse{}, fmt.Errorf("%w: load settings: %v", domain.ErrStoreUnavailable, err)
	}

	var res ReconcileResponse
	err = s.tx.WithTx(ctx, func(r ports.LoginTxRepositories) error {
		passBegan := s.nowFn()

		locked, err := r.Attempts.ListLockedUsernames(ctx, passBegan.Add(-lockoutWindow), snap.MaxLoginAttempts)
		if err != nil {
			return fmt.Errorf("%w: list locked usernames: %v", domain.ErrStoreUnavailable, err)
		}
		if len(locked) > 0 {
			usernames := make([]string, 0, len(locked))
			for _, row := range locked {
				usernames = append(usernames, row.Username)
			}
			blocked, err := r.Accounts.BlockActiveByUsernames(ctx, usernames, passBegan)
			if err != nil {
				return fmt.Errorf("%w: block accounts: %v", domain.ErrStoreUnavailable, err)
			}
			res.Blocked = blocked
		}

		cutoff := passBegan.AddDate(0, 0, -snap.InactivityDays)
		marked, err := r.Accounts.MarkInactiveBatch(ctx, cutoff, passBegan, passBegan)
		if err != nil {
			return fmt.Errorf("%w: mark inactive: %v", domain.ErrStoreUnavailable, err)
		}
		res.MarkedInactive = marked
		return nil
	})
	if err != nil {
		return ReconcileResponse{}, err
	}

	s.logger().InfoContext(ctx, "reconciliation pass completed",
		"operation", "reconcile_all",
		"outcome", "success",
		"blocked", res.Blocked,
		"marked_inactive", res.MarkedInactive,
	)
	return res, nil
}

// RepairNeverLoggedIn corrects accounts wrongly marked inactive while they
// have never logged in: they become active with last_login_at stamped now,
// so the next reconciliation treats them as freshly provisioned.
func (s *Service) RepairNeverLoggedIn(ctx context.Context) (RepairResponse, error) {
	repaired, err := s.accounts.RepairNeverLoggedIn(ctx, s.nowFn())
	if err != nil {
		return RepairResponse{}, fmt.Errorf("%w: repair accounts: %v", domain.ErrStoreUnavailable, err)
	}
	return RepairResponse{Repaired: repaired}, nil
}

// UpdateSetting persists one engine setting through the fixed key mapping.
func (s *Service) UpdateSetting(ctx context.Context, key ports.SettingKey, value int) error {
	if !key.Valid() {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if value <= 0 {
		return fmt.Errorf("%w: setting %q must be positive", domain.ErrInvalidInput, key)
	}
	return s.settings.Update(ctx, key, value)
}
