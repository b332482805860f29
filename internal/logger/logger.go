package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/irjeyaraj/UGNasSync/internal/config"
)

// New builds the process logger from the logging section of the
// configuration. The handle is created once at startup and passed to
// each component; nothing looks it up globally. With logging disabled a
// no-op logger is returned so callers never need a nil check.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	if !cfg.Enabled {
		return zap.NewNop(), nil
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var cores []zapcore.Core

	if cfg.ConsoleOutput {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	if cfg.FileOutput {
		sink, err := fileSink(cfg)
		if err != nil {
			return nil, err
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			sink,
			level,
		))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("either console_output or file_output must be enabled")
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// fileSink opens the log file destination. With rotation enabled the
// file is rolled by size and old copies pruned; otherwise it is a plain
// append-only file.
func fileSink(cfg config.LoggingConfig) (zapcore.WriteSyncer, error) {
	if cfg.LogFile == "" {
		return nil, fmt.Errorf("file_output is enabled but log_file is not set")
	}

	if cfg.RotateEnabled {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxFileSizeMB,
			MaxBackups: cfg.MaxFiles,
			Compress:   cfg.CompressRotated,
		}), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.Lock(zapcore.AddSync(f)), nil
}

// parseLevel maps a configured level name to a zap level. Trace has no
// zap equivalent and maps to debug.
func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf("invalid log level: %s (valid levels: trace, debug, info, warn, error)", s)
	}
}
