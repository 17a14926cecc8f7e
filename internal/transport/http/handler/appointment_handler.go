package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/feature/appointment"
	"massage-booking-api/internal/transport/http/ez"
	mdw "massage-booking-api/internal/transport/http/middleware"
)

type idOut struct {
	ID string `json:"id"`
}

type Appointments struct {
	Svc *appointment.Service
}

func (h *Appointments) Priority() int { return 20 }

func track(event string) { mdw.AppointmentEvents.WithLabelValues(event).Inc() }

func (h *Appointments) MountAPI(r ez.Routes) {
	g := r.Private.Group("/appointments")
	admin := []string{domain.RoleAdmin}

	ez.Register(g, ez.Action[appointment.ListQuery, []appointment.DTO]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Roles:  admin,
		Handler: func(c *gin.Context, q *appointment.ListQuery) ([]appointment.DTO, error) {
			return h.Svc.List(c.Request.Context(), *q)
		},
	})

	ez.Register(g, ez.Action[appointment.ListQuery, []appointment.DTO]{
		Method: http.MethodGet,
		Path:   "/my-appointments",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, q *appointment.ListQuery) ([]appointment.DTO, error) {
			return h.Svc.Mine(c.Request.Context(), ez.Principal(c), *q)
		},
	})

	ez.Register(g, ez.Action[struct{}, *appointment.DTO]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*appointment.DTO, error) {
			return h.Svc.Get(c.Request.Context(), ez.Principal(c), c.Param("id"))
		},
	})

	ez.Register(g, ez.Action[appointment.CreateInput, *appointment.DTO]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *appointment.CreateInput) (*appointment.DTO, error) {
			d, err := h.Svc.Create(c.Request.Context(), ez.Principal(c), *in)
			if err == nil {
				track("created")
			}
			return d, err
		},
	})

	ez.Register(g, ez.Action[appointment.UpdateInput, *appointment.DTO]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *appointment.UpdateInput) (*appointment.DTO, error) {
			d, err := h.Svc.Update(c.Request.Context(), ez.Principal(c), c.Param("id"), *in)
			if err == nil {
				track("updated")
			}
			return d, err
		},
	})

	ez.Register(g, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			if err := h.Svc.Delete(c.Request.Context(), ez.Principal(c), id); err != nil {
				return idOut{}, err
			}
			track("deleted")
			return idOut{ID: id}, nil
		},
	})

	ez.Register(g, ez.Action[struct{}, *appointment.DTO]{
		Method: http.MethodPut,
		Path:   "/admin/approve/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (*appointment.DTO, error) {
			d, err := h.Svc.Approve(c.Request.Context(), ez.Principal(c), c.Param("id"))
			if err == nil {
				track("approved")
			}
			return d, err
		},
	})

	ez.Register(g, ez.Action[appointment.CancelInput, *appointment.DTO]{
		Method: http.MethodPut,
		Path:   "/admin/cancel/:id",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *appointment.CancelInput) (*appointment.DTO, error) {
			d, err := h.Svc.Cancel(c.Request.Context(), ez.Principal(c), c.Param("id"), *in)
			if err == nil {
				track("cancelled")
			}
			return d, err
		},
	})
}
