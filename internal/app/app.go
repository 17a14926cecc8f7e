// Package app 按配置组装仓储、服务与 HTTP 引擎
package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"massage-booking-api/internal/core/auth"
	"massage-booking-api/internal/core/cache"
	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/core/mailer"
	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/feature/account"
	"massage-booking-api/internal/feature/appointment"
	"massage-booking-api/internal/feature/portfolio"
	"massage-booking-api/internal/feature/treatment"
	"massage-booking-api/internal/feature/user"
	"massage-booking-api/internal/repo"
	"massage-booking-api/internal/transport/http/handler"
	mdw "massage-booking-api/internal/transport/http/middleware"
	"massage-booking-api/internal/transport/http/router"
)

type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  *cache.Cache // nil 时不缓存，重置令牌落库
	Mail   mailer.Sender
}

type App struct {
	Engine *gin.Engine
	JWT    *auth.JWTer
	Seeder *account.Seeder
}

func NewJWTer(c *config.Config) *auth.JWTer {
	return &auth.JWTer{
		Secret:   []byte(c.JWT.Secret),
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		TTL:      c.AccessTokenTTL(),
		Leeway:   30 * time.Second,
	}
}

func New(d Deps) *App {
	cfg, l := d.Config, d.Log
	if l == nil {
		l = zap.NewNop()
	}

	users := repo.NewUserRepo(d.DB)
	treatments := repo.NewTreatmentRepo(d.DB)
	var tokens domain.ResetTokenStore = repo.NewGormResetTokens(d.DB)
	if d.Cache != nil {
		tokens = repo.NewRedisResetTokens(d.Cache)
	}
	jwter := NewJWTer(cfg)

	accountSvc := &account.Service{
		Users:    users,
		Tokens:   tokens,
		JWT:      jwter,
		Mail:     d.Mail,
		Log:      l.Named("account"),
		ResetURL: cfg.Frontend.ResetPasswordURL,
		ResetTTL: cfg.ResetTokenTTL(),
	}
	appointmentSvc := &appointment.Service{
		Appointments: repo.NewAppointmentRepo(d.DB),
		Treatments:   treatments,
		Users:        users,
		Window: domain.BookingWindow{
			Open:  cfg.Booking.OpenHour,
			Close: cfg.Booking.CloseHour,
			Loc:   cfg.Location(),
		},
	}
	treatmentSvc := &treatment.Service{
		Repo:  treatments,
		Cache: d.Cache,
		TTL:   time.Duration(cfg.Cache.TreatmentsTTLSec) * time.Second,
		Log:   l.Named("treatment"),
	}
	portfolioSvc := &portfolio.Service{Mail: d.Mail, Owner: cfg.Owner.Email, Log: l.Named("portfolio")}

	var authLimit gin.HandlerFunc
	if cfg.RateLimit.AuthRPS > 0 {
		authLimit = mdw.RateLimitPerIP(mdw.NewIPLimiter(rate.Limit(cfg.RateLimit.AuthRPS), cfg.RateLimit.AuthBurst))
	}

	engine := router.NewAPIEngine(router.OptionsFrom(cfg, l, jwter),
		&handler.Auth{Svc: accountSvc, Limit: authLimit},
		&handler.Appointments{Svc: appointmentSvc},
		&handler.Treatments{Svc: treatmentSvc},
		&handler.Portfolio{Svc: portfolioSvc},
		&handler.Users{Svc: &user.Service{Users: users}},
	)

	return &App{
		Engine: engine,
		JWT:    jwter,
		Seeder: &account.Seeder{
			Roles: repo.NewRoleRepo(d.DB),
			Users: users,
			Owner: cfg.Owner,
			Log:   l.Named("seed"),
		},
	}
}
