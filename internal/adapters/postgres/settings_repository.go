package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/tripveo/account-security-service/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// Snapshot loads every known setting row and overlays it on the defaults.
// Missing rows and unparsable values keep the default for that key.
func (r *settingsRepository) Snapshot(ctx context.Context) (ports.Settings, error) {
	var rows []settingModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return ports.Settings{}, err
	}

	snap := ports.DefaultSettings()
	for _, row := range rows {
		value, err := strconv.Atoi(row.Value)
		if err != nil || value <= 0 {
			continue
		}
		switch ports.SettingKey(row.Key) {
		case ports.SettingMaxLoginAttempts:
			snap.MaxLoginAttempts = value
		case ports.SettingSessionTimeout:
			snap.SessionTimeout = time.Duration(value) * time.Minute
		case ports.SettingInactivityDays:
			snap.InactivityDays = value
		}
	}
	return snap, nil
}

// Update upserts one setting row. The key has already passed SettingKey.Valid,
// so it maps onto a fixed row identity, never interpolated SQL.
func (r *settingsRepository) Update(ctx context.Context, key ports.SettingKey, value int) error {
	rec := settingModel{
		Key:       string(key),
		Value:     strconv.Itoa(value),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}
