// Package account 注册、登录、密码找回与当前用户资料
package account

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"massage-booking-api/internal/core/auth"
	"massage-booking-api/internal/core/mailer"
	"massage-booking-api/internal/core/validate"
	"massage-booking-api/internal/domain"
	"massage-booking-api/pkg/utils"
)

const resetTokenBytes = 32

type Service struct {
	Users    domain.UserRepository
	Tokens   domain.ResetTokenStore
	JWT      *auth.JWTer
	Mail     mailer.Sender
	Log      *zap.Logger
	ResetURL string
	ResetTTL time.Duration
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	Name      string `json:"name" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
	BirthDate string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetInput struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

// Profile /auth/me 返回的资料
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	BirthDate string    `json:"birthDate,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if in.BirthDate != "" {
		t, _ := time.Parse(time.DateOnly, in.BirthDate)
		d := datatypes.Date(t)
		u.BirthDate = &d
	}

	// 唯一索引兜底并发注册
	if _, err := s.Users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.Validation("email %s is already registered", in.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.Users.Create(ctx, u, domain.RoleClient); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return "", domain.Unauthorized("invalid email or password")
	}
	u, err := s.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.Unauthorized("invalid email or password")
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return "", domain.Unauthorized("invalid email or password")
	}
	tok, err := s.JWT.Issue(u.ID, u.Email, u.RoleNames())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// RequestPasswordReset 对调用方永远成功：非法邮箱、未知用户、存储与投递失败都只记日志
func (s *Service) RequestPasswordReset(ctx context.Context, in ForgotInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		s.log().Info("password reset with invalid input", zap.Error(err))
		return nil
	}
	if err := s.requestReset(ctx, in.Email); err != nil {
		s.log().Error("password reset request", zap.Error(err))
	}
	return nil
}

func (s *Service) requestReset(ctx context.Context, email string) error {
	u, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.log().Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	token, err := utils.RandomToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("reset token: %w", err)
	}
	if err := s.Tokens.Save(ctx, u.ID, utils.SHA256Hex(token), s.ResetTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	link := s.resetLink(u.Email, token)
	body := fmt.Sprintf(`<p>Hello %s,</p><p>Click <a href="%s">here</a> to choose a new password. The link expires in %d minutes.</p>`,
		html.EscapeString(u.Name), html.EscapeString(link), int(s.ResetTTL/time.Minute))
	if err := s.Mail.Send(ctx, u.Email, "Reset your password", body); err != nil {
		s.log().Error("send password reset email", zap.String("userId", u.ID), zap.Error(err))
	}
	return nil
}

func (s *Service) resetLink(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	sep := "?"
	if strings.Contains(s.ResetURL, "?") {
		sep = "&"
	}
	return s.ResetURL + sep + q.Encode()
}

func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	in.Email = normalizeEmail(in.Email)
	in.Token = strings.TrimSpace(in.Token)
	if err := validate.Struct(in); err != nil {
		return err
	}
	u, err := s.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.InvalidToken("invalid or expired reset token")
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tokenHash := utils.SHA256Hex(in.Token)
	if err := s.Tokens.Consume(ctx, u.ID, tokenHash); err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return domain.InvalidToken("invalid or expired reset token")
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, u, hash); err != nil {
		// 改密失败时恢复令牌，用户可用同一链接重试
		if rerr := s.Tokens.Save(ctx, u.ID, tokenHash, s.ResetTTL); rerr != nil {
			s.log().Error("restore reset token", zap.String("userId", u.ID), zap.Error(rerr))
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, p domain.Principal) (*Profile, error) {
	u, err := s.Users.FindByID(ctx, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return ToProfile(u), nil
}

func ToProfile(u *domain.User) *Profile {
	p := &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
	if u.BirthDate != nil {
		p.BirthDate = time.Time(*u.BirthDate).Format(time.DateOnly)
	}
	return p
}
