package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"massage-booking-api/internal/domain"
	"massage-booking-api/pkg/utils"
)

type UserRepo struct {
	db    *gorm.DB
	store Store[domain.User, *domain.User]
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db, store: NewStore[domain.User](db)}
}

// Create 用户与角色关联在同一事务内写入
func (r *UserRepo) Create(ctx context.Context, u *domain.User, roles ...string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rs := make([]domain.Role, 0, len(roles))
		for _, name := range roles {
			role, err := ensureRole(tx, name)
			if err != nil {
				return err
			}
			rs = append(rs, *role)
		}
		stampCreate(&u.Entity, r.store.now())
		u.Roles = rs
		return tx.Omit("Roles.*").Create(u).Error
	})
	if err != nil && isDupKey(err) {
		return domain.Validation("email %s is already registered", u.Email)
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.store.Get(ctx, id, "Roles")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Scopes(Enabled("")).Preload("Roles").
		First(&u, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, u *domain.User, hash string) error {
	if err := r.store.Update(ctx, u, map[string]any{"password_hash": hash}); err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (r *UserRepo) AddRole(ctx context.Context, u *domain.User, name string) error {
	if u.HasRole(name) {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := ensureRole(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Table("user_roles").Create(map[string]any{"user_id": u.ID, "role_id": role.ID}).Error; err != nil {
			return err
		}
		u.Roles = append(u.Roles, *role)
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Scopes(Enabled(""))
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := q.Preload("Roles").Order("created_at DESC").Order("id").
		Limit(f.Limit).Offset(f.Offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	return ensureRole(r.db.WithContext(ctx), name)
}

// ensureRole 存在即返回，不存在则创建
func ensureRole(db *gorm.DB, name string) (*domain.Role, error) {
	var role domain.Role
	err := db.Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = domain.Role{ID: utils.NewID(), Name: name}
	if err := db.Create(&role).Error; err != nil {
		if isDupKey(err) {
			// 并发兜底：唯一冲突 → 再查一次
			if e2 := db.Where("name = ?", name).First(&role).Error; e2 == nil {
				return &role, nil
			}
		}
		return nil, err
	}
	return &role, nil
}
