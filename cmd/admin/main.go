// admin 运维命令行：迁移、种子化店主账号、提升管理员
//
//	admin migrate
//	admin seed
//	admin promote <email>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/core/database"
	"massage-booking-api/internal/core/logger"
	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/feature/account"
	"massage-booking-api/internal/repo"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin [-config path] migrate | seed | promote <email>")
	flag.PrintDefaults()
}

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load(*cfgPath)
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "migrate":
		err = database.AutoMigrate(db)
	case "seed":
		if err = database.AutoMigrate(db); err == nil {
			err = (&account.Seeder{
				Roles: repo.NewRoleRepo(db),
				Users: repo.NewUserRepo(db),
				Owner: cfg.Owner,
				Log:   log.Named("seed"),
			}).Run(ctx)
		}
	case "promote":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		var u *domain.User
		if u, err = account.Promote(ctx, repo.NewUserRepo(db), flag.Arg(1)); err == nil {
			log.Info("promoted", zap.String("user", u.ID), zap.Strings("roles", u.RoleNames()))
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("admin command failed", zap.String("cmd", flag.Arg(0)), zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	log.Info("admin command done", zap.String("cmd", flag.Arg(0)))
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
