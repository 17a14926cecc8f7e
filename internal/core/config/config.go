package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyBytes      int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	Audience          string
	AccessTokenTTLMin int
	ResetTokenTTLMin  int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type SMTP struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	TLS        bool
	TimeoutSec int
}

// Owner 启动时种子化的店主（Admin）账号，也是联系表单的收件人
type Owner struct {
	Email    string
	Password string
	Name     string
	LastName string
}

type Frontend struct {
	ResetPasswordURL string
}

type CORS struct {
	AllowOrigins []string
}

type Booking struct {
	Timezone  string
	OpenHour  int
	CloseHour int
}

type Cache struct {
	TreatmentsTTLSec int
}

type RateLimit struct {
	RPS           float64
	Burst         int
	AuthRPS       float64
	AuthBurst     int
	MaxConcurrent int64
}

type Sentry struct {
	DSN         string
	Environment string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	SMTP      SMTP
	Owner     Owner
	Frontend  Frontend
	CORS      CORS
	Booking   Booking
	Cache     Cache
	RateLimit RateLimit
	Sentry    Sentry
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTLMin) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.JWT.ResetTokenTTLMin) * time.Minute
}

// Location 营业时区，非法值回退 UTC
func (c *Config) Location() *time.Location {
	if c.Booking.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "massage-booking-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxbodybytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)
	v.SetDefault("log.file.compress", false)

	// 仅靠环境变量注入的 key 也要有默认值，否则 Unmarshal 拿不到
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "massage-booking-api")
	v.SetDefault("jwt.audience", "massage-booking-web")
	v.SetDefault("jwt.accesstokenttlmin", 120)
	v.SetDefault("jwt.resettokenttlmin", 60)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.fromname", "Massage App")
	v.SetDefault("smtp.tls", true)
	v.SetDefault("smtp.timeoutsec", 15)

	v.SetDefault("owner.email", "")
	v.SetDefault("owner.password", "")
	v.SetDefault("owner.name", "Owner")
	v.SetDefault("owner.lastname", "")
	v.SetDefault("frontend.resetpasswordurl", "http://localhost:4200/reset-password")

	v.SetDefault("cors.alloworigins", []string{"http://localhost:4200", "http://127.0.0.1:4200"})

	v.SetDefault("booking.timezone", "UTC")
	v.SetDefault("booking.openhour", 9)
	v.SetDefault("booking.closehour", 20)

	v.SetDefault("cache.treatmentsttlsec", 300)

	v.SetDefault("ratelimit.rps", 200)
	v.SetDefault("ratelimit.burst", 400)
	v.SetDefault("ratelimit.authrps", 1)
	v.SetDefault("ratelimit.authburst", 10)
	v.SetDefault("ratelimit.maxconcurrent", 300)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
}

// Read 读取 YAML（文件可选）+ APP_ 前缀环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// 容器里只走环境变量时没有配置文件
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("config: jwt.secret must be at least 32 bytes")
	}
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("config: invalid booking hours %d-%d", c.Booking.OpenHour, c.Booking.CloseHour)
	}
	return nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
