// Package user 管理端用户目录
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"massage-booking-api/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type ListQuery struct {
	Q      string `form:"q"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type Row struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

type Page struct {
	Total int64 `json:"total"`
	Items []Row `json:"items"`
}

type Service struct {
	Users domain.UserRepository
}

func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	us, total, err := s.Users.List(ctx, domain.UserFilter{Q: strings.TrimSpace(q.Q), Offset: q.Offset, Limit: q.Limit})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := &Page{Total: total, Items: make([]Row, 0, len(us))}
	for i := range us {
		u := &us[i]
		out.Items = append(out.Items, Row{
			ID: u.ID, Email: u.Email, Name: u.Name, LastName: u.LastName,
			Roles: u.RoleNames(), CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}
