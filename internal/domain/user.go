package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	RoleAdmin  = "Admin"
	RoleClient = "Client"
)

type Role struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	Entity
	Email        string          `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string          `gorm:"size:64;not null" json:"name"`
	LastName     string          `gorm:"size:64;not null" json:"lastName"`
	BirthDate    *datatypes.Date `json:"birthDate,omitempty"`
	PasswordHash string          `gorm:"size:100;not null" json:"-"`
	Roles        []Role          `gorm:"many2many:user_roles;" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string { return strings.TrimSpace(u.Name + " " + u.LastName) }

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

type UserFilter struct {
	Q      string
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, u *User, roles ...string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, u *User, hash string) error
	AddRole(ctx context.Context, u *User, role string) error
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
}

type RoleRepository interface {
	Ensure(ctx context.Context, name string) (*Role, error)
}
