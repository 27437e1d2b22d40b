// Package logging provides structured logging for statscard using slog.
//
// Logs are JSON lines written to <cacheDir>/logs/run.log so a failed
// unattended run leaves a trail next to the ledger it was mutating.
// Falls back to stderr when the log file cannot be created.
package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevelEnvVar is the environment variable that controls log level.
const LogLevelEnvVar = "STATSCARD_LOG_LEVEL"

// logFileName is the log file created under <cacheDir>/logs.
const logFileName = "run.log"

var (
	logger       *slog.Logger
	logFile      *os.File
	logBufWriter *bufio.Writer

	// account recorded by Init, attached to every log line
	account string

	// mu protects logger, logFile, logBufWriter and account
	mu sync.RWMutex
)

// Init initializes the logger for a run, writing JSON logs under
// cacheDir/logs. levelStr comes from settings and is overridden by
// STATSCARD_LOG_LEVEL. Never fails the run: on any problem the logger
// falls back to stderr.
func Init(cacheDir, accountName, levelStr string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if env := os.Getenv(LogLevelEnvVar); env != "" {
		levelStr = env
	}
	level := parseLogLevel(levelStr)
	if levelStr != "" && !isValidLogLevel(levelStr) {
		fmt.Fprintf(os.Stderr, "[statscard] Warning: invalid log level %q, defaulting to INFO\n", levelStr)
	}

	account = accountName

	logsPath := filepath.Join(cacheDir, "logs")
	if err := os.MkdirAll(logsPath, 0o750); err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	f, err := os.OpenFile(filepath.Join(logsPath, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	logFile = f
	logBufWriter = bufio.NewWriterSize(f, 8192)
	logger = createLogger(logBufWriter, level)

	return nil
}

// Close flushes and closes the log file. Safe to call multiple times.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	account = ""
}

// resetLogger resets the logger to nil (for testing).
func resetLogger() {
	mu.Lock()
	defer mu.Unlock()
	logger = nil
	closeLocked()
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func getAccount() string {
	mu.RLock()
	defer mu.RUnlock()
	return account
}

func createLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseLogLevel parses a log level string to slog.Level.
// Returns slog.LevelInfo for empty or invalid values.
func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isValidLogLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "":
		return true
	default:
		return false
	}
}

// Debug logs at DEBUG level.
func Debug(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs at INFO level.
func Info(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs at WARN level.
func Warn(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs at ERROR level.
func Error(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelError, msg, attrs...)
}

// LogDuration logs a message with duration_ms calculated from the start
// time. Designed for use with defer:
//
//	defer logging.LogDuration(ctx, slog.LevelInfo, "walk completed", time.Now())
func LogDuration(ctx context.Context, level slog.Level, msg string, start time.Time, attrs ...any) {
	allAttrs := make([]any, 0, len(attrs)+1)
	allAttrs = append(allAttrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	allAttrs = append(allAttrs, attrs...)
	log(ctx, level, msg, allAttrs...)
}

func log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	l := getLogger()

	var allAttrs []any
	if acct := getAccount(); acct != "" {
		allAttrs = append(allAttrs, slog.String("account", acct))
	}
	allAttrs = append(allAttrs, attrs...)

	l.Log(ctx, level, msg, allAttrs...)
}
