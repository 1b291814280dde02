// Package logger wraps zap with file rotation and the context helpers the
// dashboard components share.
package logger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger extends zap.Logger with dashboard-specific helpers.
type Logger struct {
	*zap.Logger
	config *Config
}

// NewForUI creates a logger for TUI sessions: JSON to the rotated file and
// recent entries into ring for the logs pane. Nothing is written to stdout,
// which belongs to the terminal renderer while the dashboard runs.
func NewForUI(cfg *Config, ring *Ring) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(logRotator), level),
		newRingCore(ring, level),
	)

	return &Logger{
		Logger: zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)),
		config: cfg,
	}, nil
}

// WithSession tags log entries with the dashboard session they belong to.
func (l *Logger) WithSession(sessionID string) *zap.Logger {
	return l.With(
		zap.String("session_id", sessionID),
		zap.Time("session_start", time.Now().UTC()),
	)
}

// WithOperation creates a logger for one operation with a correlation ID.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
	)
}

// WithComponent tags entries with the owning component.
func (l *Logger) WithComponent(component string) *zap.Logger {
	return l.With(zap.String("component", component))
}
