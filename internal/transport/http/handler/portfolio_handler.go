package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/feature/portfolio"
	"massage-booking-api/internal/transport/http/ez"
)

type Portfolio struct {
	Svc *portfolio.Service
}

func (h *Portfolio) Priority() int { return 40 }

func (h *Portfolio) MountAPI(r ez.Routes) {
	ez.Register(r.Public, ez.Action[portfolio.ContactForm, message]{
		Method: http.MethodPost,
		Path:   "/portfolio/send-contact-form",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *portfolio.ContactForm) (message, error) {
			if err := h.Svc.Send(c.Request.Context(), *in); err != nil {
				return message{}, err
			}
			return message{Message: "message sent"}, nil
		},
	})
}
