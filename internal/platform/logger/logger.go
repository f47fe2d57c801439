package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/todo-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the optional log file.
const (
	logFileMaxSizeMB  = 100
	logFileMaxBackups = 5
	logFileMaxAgeDays = 28
)

// ParseLevel converts a configured level name into a slog.Level.
// The second return value is false for unknown names, which map to info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Setup initializes the application's logging system from the server
// configuration. It builds a JSON logger at the configured level writing to
// stdout and, when LogFile is set, also to a size-rotated file. The logger is
// installed as the slog default and returned along with a closer for the
// file sink.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	var sinks []io.Writer
	sinks = append(sinks, os.Stdout)

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		sinks = append(sinks, rotating)
		closer = rotating
	}

	logger := New(io.MultiWriter(sinks...), cfg.LogLevel)
	slog.SetDefault(logger)

	return logger, closer, nil
}

// New creates a JSON logger writing to w at the named level.
// An unknown level falls back to info and is reported once through the new logger.
func New(w io.Writer, levelName string) *slog.Logger {
	level, ok := ParseLevel(levelName)

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", levelName),
			slog.String("default_level", "info"))
	}
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
