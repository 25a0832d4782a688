package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
)

type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	SourceAddress string `json:"source_address,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
}

// AccountInfo is the caller-facing projection of an account. The password
// hash never leaves the service.
type AccountInfo struct {
	AccountID   uuid.UUID            `json:"account_id"`
	Username    string               `json:"username"`
	Role        domain.AccountRole   `json:"role"`
	BranchID    *uuid.UUID           `json:"branch_id,omitempty"`
	Status      domain.AccountStatus `json:"status"`
	LastLoginAt *time.Time           `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	Account   AccountInfo `json:"account"`
	Token     string      `json:"token"`
	SessionID uuid.UUID   `json:"session_id"`
	ExpiresIn int64       `json:"expires_in"`
}

type RemainingAttemptsResponse struct {
	RemainingAttempts int `json:"remaining_attempts"`
	MaxAttempts       int `json:"max_attempts"`
}

type SessionStatus struct {
	SessionID      uuid.UUID `json:"session_id"`
	AccountID      uuid.UUID `json:"account_id"`
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type UnlockResponse struct {
	AffectedAccounts int64 `json:"affected_accounts"`
	PurgedAttempts   int64 `json:"purged_attempts"`
}

type LockedAccountItem struct {
	Username       string    `json:"username"`
	FailedAttempts int       `json:"failed_attempts"`
	LastAttemptAt  time.Time `json:"last_attempt_at"`
}

type DormantAccountItem struct {
	Account      AccountInfo `json:"account"`
	DaysInactive int         `json:"days_inactive"`
}

type LoginAttemptItem struct {
	Username      string     `json:"username"`
	AccountID     *uuid.UUID `json:"account_id,omitempty"`
	SourceAddress string     `json:"source_address,omitempty"`
	Succeeded     bool       `json:"succeeded"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

type ReconcileResponse struct {
	Blocked        int64 `json:"blocked"`
	MarkedInactive int64 `json:"marked_inactive"`
}

type RepairResponse struct {
	Repaired int64 `json:"repaired"`
}

func toAccountInfo(a domain.Account) AccountInfo {
	return AccountInfo{
		AccountID:   a.AccountID,
		Username:    a.Username,
		Role:        a.Role,
		BranchID:    a.BranchID,
		Status:      a.Status,
		LastLoginAt: a.LastLoginAt,
	}
}
