package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"massage-booking-api/internal/domain"
)

// GormResetTokens 未配置 Redis 时的落库实现
type GormResetTokens struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormResetTokens(db *gorm.DB) *GormResetTokens {
	return &GormResetTokens{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *GormResetTokens) Save(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	now := s.now()
	row := domain.PasswordReset{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "used_at", "created_at"}),
	}).Create(&row).Error
}

// Consume 条件更新保证一次性
func (s *GormResetTokens) Consume(ctx context.Context, userID, tokenHash string) error {
	now := s.now()
	res := s.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("user_id = ? AND token_hash = ? AND used_at IS NULL AND expires_at > ?", userID, tokenHash, now).
		Update("used_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return domain.ErrInvalidToken
	}
	return nil
}
