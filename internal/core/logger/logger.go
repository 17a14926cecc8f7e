package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"massage-booking-api/internal/core/config"
)

type FileRotate struct {
	Enable     bool   // 是否启用文件写入 + 切割
	Filename   string // 日志文件路径，如 logs/app.log
	MaxSizeMB  int    // 单个文件最大 MB
	MaxBackups int    // 保留旧文件个数
	MaxAgeDays int    // 保留天数
	Compress   bool   // 是否压缩旧日志
}

type Options struct {
	Level       string     // debug / info / warn / error
	JSON        bool       // 是否 JSON 格式输出
	AddCaller   bool       // 是否输出调用者文件行号
	Development bool       // 开发模式（影响编码器细节）
	Rotate      FileRotate // 文件切割配置（可选）
	Output      zapcore.WriteSyncer
}

func New(level string, json bool) (*zap.Logger, func()) {
	return buildLogger(Options{
		Level:       level,
		JSON:        json,
		AddCaller:   true,
		Development: !json, // 控制台更适合开发格式
	})
}

// FromConfig 按 log.* 配置构建，file.enable 时同时写滚动文件
func FromConfig(c config.Log) (*zap.Logger, func()) {
	return buildLogger(Options{
		Level:       c.Level,
		JSON:        c.JSON,
		AddCaller:   true,
		Development: !c.JSON,
		Rotate: FileRotate{
			Enable:     c.File.Enable,
			Filename:   c.File.Filename,
			MaxSizeMB:  c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			MaxAgeDays: c.File.MaxAgeDays,
			Compress:   c.File.Compress,
		},
	})
}

func buildLogger(opt Options) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(opt.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if opt.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.TimeKey = "ts"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	out := opt.Output
	if out == nil {
		out = zapcore.AddSync(os.Stdout)
	}
	sinks := []zapcore.Core{zapcore.NewCore(enc, out, lvl)}

	if opt.Rotate.Enable && opt.Rotate.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   opt.Rotate.Filename,
			MaxSize:    max(1, opt.Rotate.MaxSizeMB),
			MaxBackups: max(0, opt.Rotate.MaxBackups),
			MaxAge:     max(0, opt.Rotate.MaxAgeDays),
			Compress:   opt.Rotate.Compress,
		}
		sinks = append(sinks, zapcore.NewCore(enc, zapcore.AddSync(rotWriter{rotator}), lvl))
	}

	core := zapcore.NewTee(sinks...)
	sampled := zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)

	opts := []zap.Option{}
	if opt.AddCaller {
		opts = append(opts, zap.AddCaller())
	}
	if opt.Development {
		opts = append(opts, zap.Development())
	}
	l := zap.New(sampled, opts...)
	cleanup := func() { _ = l.Sync() }
	return l, cleanup
}

type rotWriter struct{ *lumberjack.Logger }

func (w rotWriter) Write(p []byte) (n int, err error) { return w.Logger.Write(p) }
func (w rotWriter) Sync() error                       { return nil }

type zapIOWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *zapIOWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 给 gin.DefaultErrorWriter 这类只认 io.Writer 的地方用
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &zapIOWriter{l: l, level: level}
}

// ToStdLogger 给 http.Server.ErrorLog 用
func ToStdLogger(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
