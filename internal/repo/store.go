package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"massage-booking-api/internal/domain"
	"massage-booking-api/pkg/utils"
)

// Stamped 嵌入了 domain.Entity 的实体
type Stamped interface {
	Base() *domain.Entity
}

// Store 通用持久化：统一打时间戳、软删、乐观锁
type Store[T any, PT interface {
	*T
	Stamped
}] struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore[T any, PT interface {
	*T
	Stamped
}](db *gorm.DB) Store[T, PT] {
	return Store[T, PT]{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithDB 事务内复用
func (s Store[T, PT]) WithDB(tx *gorm.DB) Store[T, PT] {
	s.db = tx
	return s
}

// Enabled 只查未软删的行；联表时带表名前缀
func Enabled(table string) func(*gorm.DB) *gorm.DB {
	col := "is_enabled"
	if table != "" {
		col = table + ".is_enabled"
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where(col+" = ?", true) }
}

func stampCreate(b *domain.Entity, now time.Time) {
	if strings.TrimSpace(b.ID) == "" {
		b.ID = utils.NewID()
	}
	b.CreatedAt = now
	b.ModifiedAt = nil
	b.IsEnabled = true
	b.Version = 1
}

func (s Store[T, PT]) Create(ctx context.Context, m PT) error {
	stampCreate(m.Base(), s.now())
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (s Store[T, PT]) Get(ctx context.Context, id string, preload ...string) (PT, error) {
	q := s.db.WithContext(ctx).Scopes(Enabled(""))
	for _, p := range preload {
		q = q.Preload(p)
	}
	var m T
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update 按 version 条件更新；0 行时区分“已不存在”与“并发冲突”
func (s Store[T, PT]) Update(ctx context.Context, m PT, fields map[string]any) error {
	b := m.Base()
	now := s.now()
	set := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		set[k] = v
	}
	set["modified_at"] = now
	set["version"] = gorm.Expr("version + 1")

	res := s.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND version = ? AND is_enabled = ?", b.ID, b.Version, true).
		Updates(set)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.missOrConflict(ctx, b.ID)
	}
	b.ModifiedAt = &now
	b.Version++
	return nil
}

func (s Store[T, PT]) SoftDelete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND is_enabled = ?", id, true).
		Updates(map[string]any{
			"is_enabled":  false,
			"modified_at": s.now(),
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s Store[T, PT]) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).Scopes(Enabled("")).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s Store[T, PT]) missOrConflict(ctx context.Context, id string) error {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return domain.Conflict("the record was modified by another request, reload and retry")
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
