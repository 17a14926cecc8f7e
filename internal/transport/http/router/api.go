package router

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"massage-booking-api/internal/core/auth"
	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/core/server"
	"massage-booking-api/internal/transport/http/ez"
	mdw "massage-booking-api/internal/transport/http/middleware"
	resp "massage-booking-api/internal/transport/http/response"
)

type Options struct {
	Log           *zap.Logger
	JWT           *auth.JWTer
	CORSOrigins   []string
	RPS           float64
	Burst         int
	MaxConcurrent int64
	MaxBodyBytes  int64
	Timeout       time.Duration
	Sentry        bool
}

func OptionsFrom(cfg *config.Config, l *zap.Logger, j *auth.JWTer) Options {
	return Options{
		Log:           l,
		JWT:           j,
		CORSOrigins:   cfg.CORS.AllowOrigins,
		RPS:           cfg.RateLimit.RPS,
		Burst:         cfg.RateLimit.Burst,
		MaxConcurrent: cfg.RateLimit.MaxConcurrent,
		MaxBodyBytes:  cfg.App.HTTP.MaxBodyBytes,
		Timeout:       time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		Sentry:        cfg.Sentry.DSN != "",
	}
}

func NewAPIEngine(o Options, mods ...APIModule) *gin.Engine {
	l := o.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(l, o.CORSOrigins, func(c *gin.Context, _ any) {
		resp.Abort(c, http.StatusInternalServerError, "internal error")
	})

	// 中间件
	r.Use(mdw.RequestID())
	if o.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(mdw.Metrics(), mdw.AccessLog(l))
	if o.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(o.RPS), o.Burst))
	}
	if o.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(o.MaxConcurrent))
	}
	if o.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(o.MaxBodyBytes))
	}
	if o.Timeout > 0 {
		r.Use(mdw.Timeout(o.Timeout))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "Healthy") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	private := api.Group("", mdw.AuthJWT(o.JWT))

	reg := &Registry{}
	reg.Register(mods...)
	reg.MountAll(ez.Routes{Public: ez.New(api, l), Private: ez.New(private, l)})

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, "route not found") })
	return r
}
