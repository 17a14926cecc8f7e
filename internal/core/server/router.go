package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"massage-booking-api/internal/core/logger"
)

// NewRouter gin 引擎 + panic 恢复 + CORS；onPanic 负责写响应
func NewRouter(l *zap.Logger, origins []string, onPanic gin.RecoveryFunc) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.CustomRecoveryWithZap(l, true, onPanic))
	r.Use(cors.New(CORSConfig(origins)))
	return r
}

func CORSConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	if l != nil {
		srv.ErrorLog = logger.ToStdLogger(l.Named("http"), zapcore.WarnLevel)
	} else {
		srv.ErrorLog = log.Default()
	}
	return srv
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
