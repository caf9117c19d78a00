package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with levels

type Logger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// ParseLevel maps "debug", "warn" and "error" to their level. Anything else is info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// New builds a logger writing to stderr. format "json" selects the production
// encoder, anything else the console one.
func New(level LogLevel, format string) *Logger {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	atom := zap.NewAtomicLevelAt(zapLevels[level])
	cfg.Level = atom

	base, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{base: base, level: atom}
}

// NewWithCore wraps an existing zap core, mostly useful with zaptest/observer.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{
		base:  zap.New(core),
		level: zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func NewNop() *Logger {
	return &Logger{base: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.ErrorLevel)}
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}
