package postgres

import (
	"context"
	"time"

	"github.com/tripveo/account-security-service/internal/domain"
	"gorm.io/gorm"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt domain.LoginAttempt) error {
	rec := loginAttemptModel{
		Username:      attempt.Username,
		AccountID:     attempt.AccountID,
		SourceAddress: nullableString(attempt.SourceAddress),
		Succeeded:     attempt.Succeeded,
		OccurredAt:    attempt.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *loginAttemptRepository) CountRecentFailures(ctx context.Context, username string, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&loginAttemptModel{}).
		Where("username = ?", username).
		Where("succeeded = ?", false).
		Where("occurred_at >= ?", since).
		Count(&count).Error
	return int(count), err
}

func (r *loginAttemptRepository) PurgeByUsername(ctx context.Context, username string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&loginAttemptModel{})
	return res.RowsAffected, res.Error
}

func (r *loginAttemptRepository) ListByUsername(ctx context.Context, username string, limit int) ([]domain.LoginAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []loginAttemptModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.LoginAttempt, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainLoginAttempt(row))
	}
	return result, nil
}

func (r *loginAttemptRepository) ListLockedUsernames(ctx context.Context, since time.Time, threshold int) ([]domain.LockedUsername, error) {
	var rows []struct {
		Username       string    `gorm:"column:username"`
		FailedAttempts int       `gorm:"column:failed_attempts"`
		LastAttemptAt  time.Time `gorm:"column:last_attempt_at"`
	}
	err := r.db.WithContext(ctx).
		Model(&loginAttemptModel{}).
		Select("username, COUNT(*) AS failed_attempts, MAX(occurred_at) AS last_attempt_at").
		Where("succeeded = ?", false).
		Where("occurred_at >= ?", since).
		Group("username").
		Having("COUNT(*) >= ?", threshold).
		Order("username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.LockedUsername, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.LockedUsername{
			Username:       row.Username,
			FailedAttempts: row.FailedAttempts,
			LastAttemptAt:  row.LastAttemptAt,
		})
	}
	return result, nil
}
