package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/feature/user"
	"massage-booking-api/internal/transport/http/ez"
)

// Users 管理端用户目录
type Users struct {
	Svc *user.Service
}

func (h *Users) Priority() int { return 50 }

func (h *Users) MountAPI(r ez.Routes) {
	ez.Register(r.Private, ez.Action[user.ListQuery, *user.Page]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, q *user.ListQuery) (*user.Page, error) {
			return h.Svc.List(c.Request.Context(), *q)
		},
	})
}
