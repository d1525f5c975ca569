// Package zap implements run logging on go.uber.org/zap.
package zap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/recipefeed"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format of every log line.
const TimeLayout = "[2006-01-02 15:04:05]"

// SuccessLevel marks a completed step. It sits outside zap's built-in
// range, so every core admits it explicitly.
const SuccessLevel = zapcore.Level(-2)

// Ensure RunLogger implements recipefeed.Logger at compile time.
var _ recipefeed.Logger = (*RunLogger)(nil)

// Config describes the sinks of one run's logger.
type Config struct {
	// Stdout receives every line. Nil discards console output.
	Stdout io.Writer

	// LogPath receives every line; ErrorPath receives ERROR lines only.
	// Empty paths are skipped.
	LogPath   string
	ErrorPath string

	// Verbose admits DEBUG lines from logging decorators.
	Verbose bool
}

// RunLogger writes timestamped, severity-tagged lines to the console, the
// run log and the error log at once. A RunLogger is bound to a single run.
type RunLogger struct {
	logger *zap.Logger
	files  []*os.File
}

// New opens the log files named in cfg and returns a RunLogger teeing
// to all sinks.
func New(cfg Config, opts ...zap.Option) (*RunLogger, error) {
	l := &RunLogger{}

	minLevel := zapcore.InfoLevel
	if cfg.Verbose {
		minLevel = zapcore.DebugLevel
	}
	all := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl == SuccessLevel || lvl >= minLevel
	})
	errorsOnly := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	encoder := zapcore.NewConsoleEncoder(EncoderConfig())

	var cores []zapcore.Core
	if cfg.Stdout != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(cfg.Stdout), all))
	}
	if cfg.LogPath != "" {
		f, err := l.open(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), all))
	}
	if cfg.ErrorPath != "" {
		f, err := l.open(cfg.ErrorPath)
		if err != nil {
			_ = l.Close()
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), errorsOnly))
	}

	l.logger = zap.New(zapcore.NewTee(cores...), opts...)
	return l, nil
}

// Locked serializes writes to w so that loggers of concurrent runs can
// share one console.
func Locked(w io.Writer) io.Writer {
	return zapcore.Lock(zapcore.AddSync(w))
}

// EncoderConfig returns the line format shared by every sink:
// "[2006-01-02 15:04:05] LEVEL message {fields}".
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(lvl))
}

// LevelName returns the severity label written for lvl.
func LevelName(lvl zapcore.Level) string {
	switch lvl {
	case SuccessLevel:
		return "SUCCESS"
	case zapcore.WarnLevel:
		return "WARNING"
	default:
		return lvl.CapitalString()
	}
}

func (l *RunLogger) open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l.files = append(l.files, f)
	return f, nil
}

// Zap returns the underlying logger for decorators.
func (l *RunLogger) Zap() *zap.Logger {
	return l.logger
}

func (l *RunLogger) Info(msg string, keysAndValues ...any) {
	l.log(zapcore.InfoLevel, msg, keysAndValues)
}

func (l *RunLogger) Success(msg string, keysAndValues ...any) {
	l.log(SuccessLevel, msg, keysAndValues)
}

func (l *RunLogger) Warn(msg string, keysAndValues ...any) {
	l.log(zapcore.WarnLevel, msg, keysAndValues)
}

func (l *RunLogger) Error(msg string, keysAndValues ...any) {
	l.log(zapcore.ErrorLevel, msg, keysAndValues)
}

func (l *RunLogger) log(lvl zapcore.Level, msg string, kv []any) {
	if ce := l.logger.Check(lvl, msg); ce != nil {
		ce.Write(Fields(kv...)...)
	}
}

// Sync flushes buffered lines.
func (l *RunLogger) Sync() error {
	return l.logger.Sync()
}

// Close flushes and closes the log files.
func (l *RunLogger) Close() error {
	var errs []error
	if l.logger != nil {
		// Syncing a terminal returns EINVAL; only file errors matter here.
		_ = l.logger.Sync()
	}
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.files = nil
	return errors.Join(errs...)
}

// Fields converts alternating key-value pairs into zap fields. A trailing
// key without a value is kept under "!BADKEY".
func Fields(keysAndValues ...any) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any("!BADKEY", keysAndValues[i]))
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
