// Package logging 基于 zerolog 提供进程级日志。
//
// 用法：
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.L().Info().Str("user", userID).Msg("enrich started")
//	logging.Ctx(ctx).Warn().Err(err).Msg("insert failed")
//
// 日志链必须以 Msg / Send 结尾，否则不会输出。
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	Level  string    `koanf:"level"`  // trace / debug / info / warn / error / disabled
	Format string    `koanf:"format"` // json / console
	Caller bool      `koanf:"caller"`
	Output io.Writer `koanf:"-"`
}

var (
	mu     sync.RWMutex
	global zerolog.Logger
)

func init() {
	Init(Config{})
}

// Init 重新配置全局 logger，可重复调用。
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	l := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		l = l.Caller()
	}

	mu.Lock()
	global = l.Logger()
	mu.Unlock()
}

// ParseLevel 把字符串转换为 zerolog.Level，未知值按 info 处理。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// L 返回全局 logger。
func L() *zerolog.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	return &l
}

// Component 返回带 component 字段的子 logger。
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

type ctxKey struct{}

// ContextWithCorrelationID 把关联 ID 写入 context。
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ContextWithNewCorrelationID 生成新的关联 ID（uuid 前 8 位）写入 context。
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, uuid.NewString()[:8])
}

// CorrelationID 读取 context 中的关联 ID，没有时返回空串。
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ctx 返回携带 correlation_id 的 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := L()
	if id := CorrelationID(ctx); id != "" {
		sub := l.With().Str("correlation_id", id).Logger()
		return &sub
	}
	return l
}
