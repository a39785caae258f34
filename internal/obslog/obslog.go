package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 전역 로거. InitFromEnv 전에는 Nop.
var globalLogger atomic.Pointer[zap.Logger]

func init() {
	globalLogger.Store(zap.NewNop())
}

// L returns the process-wide logger.
func L() *zap.Logger { return globalLogger.Load() }

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	prev := globalLogger.Swap(logger)
	return func() { globalLogger.Store(prev) }
}

type options struct {
	level      zapcore.Level
	console    bool
	toFile     bool
	showCaller bool
	format     string
	filePath   string
}

func optionsFromEnv() options {
	o := options{
		level:      parseLevel(getenvDefault("LOG_LEVEL", "info")),
		console:    parseBool(getenvDefault("LOG_TO_CONSOLE", "true")),
		toFile:     parseBool(getenvDefault("LOG_TO_FILE", "false")),
		showCaller: parseBool(getenvDefault("LOG_CALLER", "false")),
		format:     strings.ToLower(strings.TrimSpace(getenvDefault("LOG_FORMAT", "legacy"))),
		filePath:   strings.TrimSpace(getenvDefault("LOG_FILE", filepath.Join("logs", "chess.log"))),
	}
	switch o.format {
	case "legacy", "json", "console":
	default:
		o.format = "legacy"
	}
	if o.format == "legacy" {
		o.showCaller = true
	}
	return o
}

// InitFromEnv builds the global logger from LOG_* variables.
func InitFromEnv() error {
	logger, err := build(optionsFromEnv())
	if err != nil {
		return err
	}
	globalLogger.Store(logger)
	return nil
}

func build(o options) (*zap.Logger, error) {
	var cores []zapcore.Core

	if o.console {
		cores = append(cores, zapcore.NewCore(encoderFor(o.format), zapcore.AddSync(os.Stdout), o.level))
	}
	if o.toFile {
		if err := ensureDir(filepath.Dir(o.filePath)); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(o.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoderFor(o.format), zapcore.AddSync(f), o.level))
	}
	if len(cores) == 0 {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), o.level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if o.showCaller {
		logger = logger.WithOptions(zap.AddCaller())
	}
	return logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoderFor(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig())
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		if strings.EqualFold(strings.TrimSpace(s), "warning") {
			return zapcore.WarnLevel
		}
		return zapcore.InfoLevel
	}
	return lvl
}

func parseBool(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "true") }

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
