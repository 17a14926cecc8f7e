package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/domain"
	"massage-booking-api/pkg/utils"
)

// Seeder 启动时确保角色与店主账号存在，可重复执行
type Seeder struct {
	Roles domain.RoleRepository
	Users domain.UserRepository
	Owner config.Owner
	Log   *zap.Logger
}

func (s *Seeder) Run(ctx context.Context) error {
	for _, r := range []string{domain.RoleAdmin, domain.RoleClient} {
		if _, err := s.Roles.Ensure(ctx, r); err != nil {
			return fmt.Errorf("ensure role %s: %w", r, err)
		}
	}

	email := normalizeEmail(s.Owner.Email)
	if email == "" || s.Owner.Password == "" {
		return nil
	}
	u, err := s.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.HasRole(domain.RoleAdmin) {
			return s.Users.AddRole(ctx, u, domain.RoleAdmin)
		}
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("find owner: %w", err)
	}

	hash, err := utils.HashPassword(s.Owner.Password)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}
	owner := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(s.Owner.Name),
		LastName:     strings.TrimSpace(s.Owner.LastName),
		PasswordHash: hash,
	}
	if err := s.Users.Create(ctx, owner, domain.RoleAdmin); err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	if s.Log != nil {
		s.Log.Info("owner account created", zap.String("email", email))
	}
	return nil
}

// Promote 给已有用户追加 Admin 角色
func Promote(ctx context.Context, users domain.UserRepository, email string) (*domain.User, error) {
	u, err := users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u.HasRole(domain.RoleAdmin) {
		return u, nil
	}
	if err := users.AddRole(ctx, u, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return u, nil
}
