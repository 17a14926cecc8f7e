package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"massage-booking-api/internal/app"
	"massage-booking-api/internal/core/cache"
	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/core/database"
	"massage-booking-api/internal/core/logger"
	"massage-booking-api/internal/core/mailer"
	"massage-booking-api/internal/core/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			log.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// Redis 可选；没配时治疗列表不缓存，重置令牌落库
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		rc.Log = log.Named("cache")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Fatal("redis ping", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		}
		cancel()
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	a := app.New(app.Deps{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  rc,
		Mail:   mailer.New(cfg.SMTP, log.Named("mail")),
	})
	if err := a.Seeder.Run(context.Background()); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, a.Engine,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		log,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("booking api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("booking api start FAILED", zap.Error(err))
		}
	}()
	log.Info("booking api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if rc != nil {
		_ = rc.RDB.Close()
	}
	log.Info("booking api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
