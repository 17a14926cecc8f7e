package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/feature/account"
	"massage-booking-api/internal/transport/http/ez"
)

type message struct {
	Message string `json:"message"`
}

type tokenOut struct {
	Token string `json:"token"`
}

// Auth /auth/*；Limit 为每 IP 限速，可为空
type Auth struct {
	Svc   *account.Service
	Limit gin.HandlerFunc
}

func (h *Auth) Priority() int { return 10 }

func (h *Auth) MountAPI(r ez.Routes) {
	var mw []gin.HandlerFunc
	if h.Limit != nil {
		mw = append(mw, h.Limit)
	}
	pub := r.Public.Group("/auth", mw...)

	ez.Register(pub, ez.Action[account.RegisterInput, message]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *account.RegisterInput) (message, error) {
			if _, err := h.Svc.Register(c.Request.Context(), *in); err != nil {
				return message{}, err
			}
			return message{Message: "registration successful, you can now log in"}, nil
		},
	})

	ez.Register(pub, ez.Action[account.LoginInput, tokenOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *account.LoginInput) (tokenOut, error) {
			tok, err := h.Svc.Login(c.Request.Context(), *in)
			return tokenOut{Token: tok}, err
		},
	})

	// 不论 body 是否可解析都回同样的成功响应
	ez.Register(pub, ez.Action[struct{}, message]{
		Method: http.MethodPost,
		Path:   "/forgot-password",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (message, error) {
			var in account.ForgotInput
			_ = c.ShouldBindJSON(&in)
			if err := h.Svc.RequestPasswordReset(c.Request.Context(), in); err != nil {
				return message{}, err
			}
			return message{Message: "if the email is registered, a recovery link has been sent"}, nil
		},
	})

	ez.Register(pub, ez.Action[account.ResetInput, message]{
		Method: http.MethodPost,
		Path:   "/reset-password",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *account.ResetInput) (message, error) {
			if err := h.Svc.ResetPassword(c.Request.Context(), *in); err != nil {
				return message{}, err
			}
			return message{Message: "password updated"}, nil
		},
	})

	ez.Register(r.Private, ez.Action[struct{}, *account.Profile]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*account.Profile, error) {
			return h.Svc.Me(c.Request.Context(), ez.Principal(c))
		},
	})
}
