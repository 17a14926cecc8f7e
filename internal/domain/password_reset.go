package domain

import (
	"context"
	"time"
)

// PasswordReset 数据库版一次性重置令牌（每个用户仅保留最新一条）
type PasswordReset struct {
	UserID    string     `gorm:"primaryKey;size:36"`
	TokenHash string     `gorm:"size:64;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (PasswordReset) TableName() string { return "password_resets" }

type ResetTokenStore interface {
	// Save 覆盖该用户之前的令牌
	Save(ctx context.Context, userID, tokenHash string, ttl time.Duration) error
	// Consume 原子地校验并作废；不匹配/过期/已用返回 ErrInvalidToken
	Consume(ctx context.Context, userID, tokenHash string) error
}
