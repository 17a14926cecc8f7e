package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/feature/treatment"
	"massage-booking-api/internal/transport/http/ez"
)

type Treatments struct {
	Svc *treatment.Service
}

func (h *Treatments) Priority() int { return 30 }

func (h *Treatments) MountAPI(r ez.Routes) {
	// 列表匿名可看
	ez.Register(r.Public, ez.Action[struct{}, []domain.Treatment]{
		Method: http.MethodGet,
		Path:   "/treatments",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Treatment, error) {
			return h.Svc.List(c.Request.Context())
		},
	})

	g := r.Private.Group("/treatments")
	admin := []string{domain.RoleAdmin}

	ez.Register(g, ez.Action[struct{}, *domain.Treatment]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Treatment, error) {
			return h.Svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(g, ez.Action[treatment.Input, *domain.Treatment]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Roles:  admin,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *treatment.Input) (*domain.Treatment, error) {
			return h.Svc.Create(c.Request.Context(), *in)
		},
	})

	ez.Register(g, ez.Action[treatment.Input, *domain.Treatment]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *treatment.Input) (*domain.Treatment, error) {
			return h.Svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.Register(g, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.Svc.Delete(c.Request.Context(), id)
		},
	})
}
