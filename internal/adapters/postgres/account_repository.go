package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) RecordLogin(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"status":        string(domain.StatusActive),
			"last_login_at": at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) SetStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) ActivateByUsername(ctx context.Context, username string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("username = ?", username).
		Where("status <> ?", string(domain.StatusActive)).
		Updates(map[string]any{
			"status":     string(domain.StatusActive),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *accountRepository) BlockActiveByUsernames(ctx context.Context, usernames []string, at time.Time) (int64, error) {
	if len(usernames) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("username IN ?", usernames).
		Where("status = ?", string(domain.StatusActive)).
		Updates(map[string]any{
			"status":     string(domain.StatusBlocked),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *accountRepository) MarkInactiveBatch(ctx context.Context, cutoff, passBegan, at time.Time) (int64, error) {
	// The WHERE re-checks last_login_at and updated_at so a login or an
	// administrator activation racing the pass keeps its result.
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("role = ?", string(domain.RoleCustomer)).
		Where("status = ?", string(domain.StatusActive)).
		Where("last_login_at IS NOT NULL").
		Where("last_login_at < ?", cutoff).
		Where("updated_at <= ?", passBegan).
		Updates(map[string]any{
			"status":     string(domain.StatusInactive),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *accountRepository) RepairNeverLoggedIn(ctx context.Context, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("status = ?", string(domain.StatusInactive)).
		Where("last_login_at IS NULL").
		Updates(map[string]any{
			"status":        string(domain.StatusActive),
			"last_login_at": at,
			"updated_at":    at,
		})
	return res.RowsAffected, res.Error
}

func (r *accountRepository) ListByStatuses(ctx context.Context, statuses []domain.AccountStatus) ([]domain.Account, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	var rows []accountModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Order("username ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAccount(row))
	}
	return result, nil
}
