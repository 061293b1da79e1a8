package logger

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface is an interface that wraps the Logger methods.
//
//go:generate mockgen -source log.go -destination=mock/log_mock.go -package=logger_mock
type Interface interface {
	Debug(message string, fields ...Field)
	DebugContext(ctx context.Context, message string, fields ...Field)
	Error(err error, fields ...Field)
	ErrorContext(ctx context.Context, err error, fields ...Field)
	Info(message string, fields ...Field)
	InfoContext(ctx context.Context, message string, fields ...Field)
	Sync() error
	Warn(message string, fields ...Field)
	WarnContext(ctx context.Context, message string, fields ...Field)
}

// Logger is a wrapper around zap.Logger to provide structured logging.
type Logger struct {
	logger *zap.Logger
}

// Field holds key-value to be written to log.
type Field struct {
	Key   string
	Value any
}

// Options holds configuration options for the logger.
type Options struct {
	level       Level
	outputPaths []string
}

// Level represents the severity level of the log.
type Level string

var (
	// DebugLevel is used for debug messages.
	DebugLevel Level = "debug"
	// InfoLevel is used for informational messages.
	InfoLevel Level = "info"
	// WarnLevel is used for warning messages.
	WarnLevel Level = "warn"
	// ErrorLevel is used for error messages.
	ErrorLevel Level = "error"

	messageKey string = "message"
)

func (level Level) getZapLevel() zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel // use info level as default, same as zap's default production config
	}
}

// NewNop returns a Logger that discards every entry.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// NewLogger creates new Logger instance with configuration options.
func NewLogger(opts ...Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()

	// apply configuration from options
	for _, opt := range opts {
		if opt.level != "" {
			cfg.Level = zap.NewAtomicLevelAt(opt.level.getZapLevel())
		}
		if opt.outputPaths != nil {
			cfg.OutputPaths = opt.outputPaths
		}
	}

	// change default message key `msg` to `message`
	cfg.EncoderConfig.MessageKey = messageKey

	logger, err := cfg.Build()
	return &Logger{
		logger: logger,
	}, err
}

// Sync flush the buffered log entries
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

// WithLoggingLevel is used to set the minimum log level that will be logged to stdout.
// If not set, it will log `info` level and above by default
func WithLoggingLevel(level Level) Options {
	return Options{
		level: level,
	}
}

// WithOutputPaths is used to set multiple output paths that will be used to write
// logs to. The special paths "stdout" and "stderr" are interpreted as
// os.Stdout and os.Stderr. When specified without a scheme, relative file
// paths also work.
func WithOutputPaths(paths []string) Options {
	return Options{
		outputPaths: paths,
	}
}

// NewField returns Field with given key and value.
func NewField(key string, value any) Field {
	return Field{key, value}
}

// Info write log with severity level info
func (l *Logger) Info(message string, fields ...Field) {
	zapFields := convertFields(fields...)
	l.logger.Info(message, zapFields...)
}

// InfoContext write log with severity level info and append run fields from context.
func (l *Logger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.Info(message, appendRunFields(ctx, fields)...)
}

// Warn write log with severity level warn
func (l *Logger) Warn(message string, fields ...Field) {
	zapFields := convertFields(fields...)
	l.logger.Warn(message, zapFields...)
}

// WarnContext write log with severity level warn and append run fields from context.
func (l *Logger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.Warn(message, appendRunFields(ctx, fields)...)
}

// Debug Write log with severity level debug
func (l *Logger) Debug(message string, fields ...Field) {
	zapFields := convertFields(fields...)
	l.logger.Debug(message, zapFields...)
}

// DebugContext Write log with severity level debug and append run fields from context.
func (l *Logger) DebugContext(ctx context.Context, message string, fields ...Field) {
	l.Debug(message, appendRunFields(ctx, fields)...)
}

// Error write log with severity level error
func (l *Logger) Error(err error, fields ...Field) {
	zapFields := convertFields(fields...)
	stacktrace := ""

	var errTracer errors.StackTracer
	if stderrors.As(err, &errTracer) {
		stacktrace = strings.TrimSpace(fmt.Sprintf("%+v", errTracer.StackTrace()))
	}

	if ce := l.logger.Check(zapcore.ErrorLevel, err.Error()); ce != nil {
		if stacktrace != "" {
			// override stack trace
			ce.Stack = stacktrace
		}
		ce.Write(zapFields...)
	}
}

// ErrorContext write log with severity level error and append run fields from context.
func (l *Logger) ErrorContext(ctx context.Context, err error, fields ...Field) {
	l.Error(err, appendRunFields(ctx, fields)...)
}

// convertFields transform fields to zap log fields
func convertFields(fields ...Field) []zapcore.Field {
	var zapFields []zapcore.Field
	for _, field := range fields {
		zapFields = append(zapFields, zap.Any(field.Key, field.Value))
	}
	return zapFields
}

// appendRunFields get run id and symbol from context and append them to given fields.
func appendRunFields(ctx context.Context, fields []Field) []Field {
	fields = append(fields, NewField("run_id", util.GetRunID(ctx)))
	if symbol := util.GetSymbol(ctx); symbol != "" {
		fields = append(fields, NewField("symbol", symbol))
	}
	return fields
}
