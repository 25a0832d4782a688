package postgres

import (
	"strings"

	"github.com/tripveo/account-security-service/internal/domain"
)

func toDomainAccount(row accountModel) domain.Account {
	return domain.Account{
		AccountID:    row.AccountID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         domain.AccountRole(row.Role),
		BranchID:     row.BranchID,
		Status:       domain.AccountStatus(row.Status),
		LastLoginAt:  row.LastLoginAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	addr := ""
	if row.SourceAddress != nil {
		addr = *row.SourceAddress
	}
	return domain.Session{
		SessionID:      row.SessionID,
		AccountID:      row.AccountID,
		SourceAddress:  addr,
		UserAgent:      row.UserAgent,
		IssuedAt:       row.IssuedAt,
		LastActivityAt: row.LastActivityAt,
	}
}

func toDomainLoginAttempt(row loginAttemptModel) domain.LoginAttempt {
	addr := ""
	if row.SourceAddress != nil {
		addr = *row.SourceAddress
	}
	return domain.LoginAttempt{
		ID:            row.ID,
		Username:      row.Username,
		AccountID:     row.AccountID,
		SourceAddress: addr,
		Succeeded:     row.Succeeded,
		OccurredAt:    row.OccurredAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
