package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	AccountID    uuid.UUID  `gorm:"column:account_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"column:username"`
	PasswordHash string     `gorm:"column:password_hash"`
	Role         string     `gorm:"column:role"`
	BranchID     *uuid.UUID `gorm:"column:branch_id"`
	Status       string     `gorm:"column:status"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	Username      string     `gorm:"column:username"`
	AccountID     *uuid.UUID `gorm:"column:account_id"`
	SourceAddress *string    `gorm:"column:source_address"`
	Succeeded     bool       `gorm:"column:succeeded"`
	OccurredAt    time.Time  `gorm:"column:occurred_at"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

type sessionModel struct {
	SessionID      uuid.UUID `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID      uuid.UUID `gorm:"column:account_id"`
	SourceAddress  *string   `gorm:"column:source_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	IssuedAt       time.Time `gorm:"column:issued_at"`
	LastActivityAt time.Time `gorm:"column:last_activity_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type settingModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (settingModel) TableName() string { return "settings" }
