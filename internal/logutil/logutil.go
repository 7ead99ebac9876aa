// Package logutil sets up the process-wide zap logger. While the browser
// owns the terminal nothing may be written to stdout, so logs either go to a
// rotating file or to stderr.
package logutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig describes where and how much to log.
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // console or json
	Filename   string // empty logs to stderr
	MaxSize    int    // megabytes before rotation
	MaxDays    int
	MaxBackups int
}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// L returns the process logger. It is a no-op logger until Setup runs.
func L() *zap.Logger {
	return global.Load()
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Setup builds a logger from cfg and installs it as the process logger.
func Setup(cfg LogConfig) (*zap.Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	global.Store(logger)
	return logger, nil
}

// New builds a logger from cfg without installing it.
func New(cfg LogConfig) (*zap.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	encoder, err := cfg.encoder()
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(encoder, cfg.syncer(), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func (cfg LogConfig) level() (zap.AtomicLevel, error) {
	name := strings.TrimSpace(cfg.Level)
	if name == "" {
		name = "warn"
	}
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(name))
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return lvl, nil
}

func (cfg LogConfig) encoder() (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		return zapcore.NewJSONEncoder(ec), nil
	}
	return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
}

func (cfg LogConfig) syncer() zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	})
}

// Sync flushes the process logger. Errors from syncing a terminal are
// ignored.
func Sync() error {
	err := L().Sync()
	if err != nil && (strings.Contains(err.Error(), "invalid argument") || strings.Contains(err.Error(), "inappropriate ioctl")) {
		return nil
	}
	return err
}
