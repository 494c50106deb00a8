// pkg/logger/logger.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log         *zap.Logger
	logFilePath string
)

// RunLogFileName returns the per-run log file name for the given start time.
// The file lives in the working directory so the operator finds the transcript
// next to where the harness was invoked.
func RunLogFileName(start time.Time) string {
	return fmt.Sprintf("modemstress-%s.log", start.Format("20060102-150405"))
}

// DefaultConsoleEncoderConfig renders human-readable console output.
func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// NewFallbackLogger builds a console-only logger for when no file is writable.
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stdout),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitializeWithFallback sets up the global logger: console output teed with a
// timestamped JSON log file in the working directory. Falls back to console
// only when the file cannot be created.
func InitializeWithFallback() {
	path := RunLogFileName(time.Now())
	if cwd, err := os.Getwd(); err == nil {
		path = filepath.Join(cwd, path)
	}

	writer, err := GetLogFileWriter(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no writable log path, logging to console only: %v\n", err)
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		otelzap.ReplaceGlobals(otelzap.New(log))
		return
	}
	logFilePath = path

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, level),
	)

	log = zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(log)
	otelzap.ReplaceGlobals(otelzap.New(log))
	log.Info("Logging to file", zap.String("path", path))
}

// L returns the global logger instance.
func L() *zap.Logger {
	if log == nil {
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
	}
	return log
}

// LogFilePath returns the per-run log file path, or "" when console-only.
func LogFilePath() string {
	return logFilePath
}

// ParseLogLevel maps an environment string to a zap level.
func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries. Call before the process exits.
func Sync() error {
	if log != nil {
		return log.Sync()
	}
	return nil
}
