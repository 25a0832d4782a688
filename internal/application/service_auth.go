package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
	"github.com/tripveo/account-security-service/internal/ports"
)

// Login verifies credentials behind the lockout gate, records the attempt
// in the ledger, applies the status transitions the outcome implies, and
// issues a session on success. The whole read-count/append/transition
// section is serialized per username so simultaneous wrong-password
// submissions cannot undercount.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		// Fail closed: without the threshold we cannot decide lockout.
		return LoginResponse{}, fmt.Errorf("%w: load settings: %v", domain.ErrStoreUnavailable, err)
	}

	var account domain.Account
	err = s.tx.WithUsernameLock(ctx, username, func(r ports.LoginTxRepositories) error {
		now := s.nowFn()

		failures, countErr := r.Attempts.CountRecentFailures(ctx, username, now.Add(-lockoutWindow))
		if countErr != nil {
			return fmt.Errorf("%w: count recent failures: %v", domain.ErrStoreUnavailable, countErr)
		}
		if failures >= snap.MaxLoginAttempts {
			// Locked: record nothing further.
			return &domain.LoginDeniedError{Reason: domain.ErrAccountLocked, RemainingAttempts: 0}
		}

		resolved, getErr := r.Accounts.GetByUsername(ctx, username)
		if getErr != nil && !errors.Is(getErr, domain.ErrNotFound) {
			return fmt.Errorf("%w: resolve account: %v", domain.ErrStoreUnavailable, getErr)
		}
		if getErr == nil && resolved.Status == domain.StatusBlocked {
			// A blocked account never reaches the hash comparison.
			return &domain.LoginDeniedError{Reason: domain.ErrAccountLocked, RemainingAttempts: 0}
		}

		var accountRef *uuid.UUID
		succeeded := false
		if getErr != nil {
			// Unknown user pays the same hash comparison as a wrong password.
			_ = s.hasher.Compare(dummyPasswordHash, req.Password)
		} else {
			accountRef = &resolved.AccountID
			succeeded = s.hasher.Compare(resolved.PasswordHash, req.Password) == nil
		}

		if insErr := r.Attempts.Insert(ctx, domain.LoginAttempt{
			Username:      username,
			AccountID:     accountRef,
			SourceAddress: req.SourceAddress,
			Succeeded:     succeeded,
			OccurredAt:    now,
		}); insErr != nil {
			// Auditing must not become an availability hazard for login.
			s.logger().ErrorContext(ctx, "login attempt ledger write failed",
				"operation", "login",
				"outcome", "degraded",
				"username", username,
				"error", insErr,
			)
		}

		if !succeeded {
			failures++
			remaining := snap.MaxLoginAttempts - failures
			if remaining < 0 {
				remaining = 0
			}
			if failures >= snap.MaxLoginAttempts && accountRef != nil {
				if blockErr := r.Accounts.SetStatus(ctx, *accountRef, domain.StatusBlocked, now); blockErr != nil {
					return fmt.Errorf("%w: block account: %v", domain.ErrStoreUnavailable, blockErr)
				}
				s.logger().WarnContext(ctx, "account lockout triggered",
					"operation", "login",
					"outcome", "blocked",
					"username", username,
					"failed_attempts", failures,
				)
			}
			return &domain.LoginDeniedError{Reason: domain.ErrInvalidCredentials, RemainingAttempts: remaining}
		}

		// Success reactivates inactive accounts and stamps last_login_at.
		if recErr := r.Accounts.RecordLogin(ctx, resolved.AccountID, now); recErr != nil {
			return fmt.Errorf("%w: record login: %v", domain.ErrStoreUnavailable, recErr)
		}
		resolved.Status = domain.StatusActive
		resolved.LastLoginAt = &now
		account = resolved
		return nil
	})
	if err != nil {
		return LoginResponse{}, err
	}

	now := s.nowFn()
	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		AccountID:     account.AccountID,
		SourceAddress: req.SourceAddress,
		UserAgent:     req.UserAgent,
		IssuedAt:      now,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("%w: create session: %v", domain.ErrStoreUnavailable, err)
	}

	token, err := s.tokenSigner.Sign(ports.SessionClaims{
		AccountID: account.AccountID,
		Username:  account.Username,
		Role:      string(account.Role),
		SessionID: session.SessionID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign session token: %w", err)
	}

	return LoginResponse{
		Account:   toAccountInfo(account),
		Token:     token,
		SessionID: session.SessionID,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// RemainingAttempts backs the pre-submit UI check. It never fails the
// caller: any internal error resolves to the configured maximum.
func (s *Service) RemainingAttempts(ctx context.Context, username string) RemainingAttemptsResponse {
	snap, err := s.snapshot(ctx)
	if err != nil {
		snap = ports.DefaultSettings()
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return RemainingAttemptsResponse{RemainingAttempts: snap.MaxLoginAttempts, MaxAttempts: snap.MaxLoginAttempts}
	}

	failures, err := s.attempts.CountRecentFailures(ctx, username, s.nowFn().Add(-lockoutWindow))
	if err != nil {
		s.logger().WarnContext(ctx, "remaining attempts query degraded to maximum",
			"operation", "remaining_attempts",
			"outcome", "degraded",
			"error", err,
		)
		return RemainingAttemptsResponse{RemainingAttempts: snap.MaxLoginAttempts, MaxAttempts: snap.MaxLoginAttempts}
	}

	remaining := snap.MaxLoginAttempts - failures
	if remaining < 0 {
		remaining = 0
	}
	return RemainingAttemptsResponse{RemainingAttempts: remaining, MaxAttempts: snap.MaxLoginAttempts}
}

// CheckSession enforces idle expiry for one authenticated request. An
// expired session is destroyed, not flagged; the caller must discard all
// session state and re-authenticate. On OK the activity timestamp moves
// forward so it stays monotonically non-decreasing.
func (s *Service) CheckSession(ctx context.Context, token string) (SessionStatus, error) {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return SessionStatus{}, domain.ErrUnauthorized
	}
	if revoked, _ := s.revocations.IsRevoked(ctx, claims.SessionID); revoked {
		return SessionStatus{}, domain.ErrSessionExpired
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SessionStatus{}, domain.ErrSessionExpired
		}
		return SessionStatus{}, fmt.Errorf("%w: load session: %v", domain.ErrStoreUnavailable, err)
	}
	if session.AccountID != claims.AccountID {
		return SessionStatus{}, domain.ErrUnauthorized
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		snap = ports.DefaultSettings()
	}

	now := s.nowFn()
	if now.Sub(session.LastActivityAt) > snap.SessionTimeout {
		s.destroySession(ctx, session.SessionID)
		return SessionStatus{}, domain.ErrSessionExpired
	}

	if touchErr := s.sessions.TouchActivity(ctx, session.SessionID, now); touchErr != nil {
		return SessionStatus{}, fmt.Errorf("%w: touch session: %v", domain.ErrStoreUnavailable, touchErr)
	}

	return SessionStatus{
		SessionID:      session.SessionID,
		AccountID:      claims.AccountID,
		Username:       claims.Username,
		Role:           claims.Role,
		LastActivityAt: now,
	}, nil
}

// Logout destroys the caller's session.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	s.destroySession(ctx, claims.SessionID)
	return nil
}

func (s *Service) destroySession(ctx context.Context, sessionID uuid.UUID) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger().ErrorContext(ctx, "session delete failed",
			"operation", "destroy_session",
			"outcome", "degraded",
			"session_id", sessionID,
			"error", err,
		)
	}
	_ = s.revocations.MarkRevoked(ctx, sessionID, s.nowFn().Add(s.cfg.TokenTTL))
}
