// Package logger implements structured logging on log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Logger writes text or JSON records to a single writer.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	jsonMode bool
	level    slog.Level
}

// New creates a Logger writing text records to stderr at info level.
func New() *Logger {
	l := &Logger{output: os.Stderr, level: slog.LevelInfo}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(slog.NewTextHandler(l.output, opts))
}

// SetOutput changes the destination. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and text records.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

// SetDebug lowers the level to debug.
func (l *Logger) SetDebug(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = slog.LevelInfo
	if enable {
		l.level = slog.LevelDebug
	}
	l.rebuild()
}

// Debug logs a debug message with key/value attributes.
func (l *Logger) Debug(msg string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg, args...)
}

// Info logs an informational message with key/value attributes.
func (l *Logger) Info(msg string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg, args...)
}

// Warn logs a warning with key/value attributes.
func (l *Logger) Warn(msg string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg, args...)
}

// Error logs err. The error chain is flattened into a "causes" attribute so
// each zerr layer shows up separately, and zerr metadata from every layer
// becomes record attributes.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	messages := Chain(err)
	if len(messages) == 0 {
		messages = []string{"operation failed"}
	}
	args := Fields(err)
	if len(messages) > 1 {
		args = append(args, "causes", strings.Join(messages[1:], "; "))
	}
	l.logger.Error(messages[0], args...)
}

// Chain returns the messages of err and its causes, outermost first.
// Layers with an empty message are skipped.
func Chain(err error) []string {
	var messages []string
	for current := err; current != nil; {
		z, ok := current.(*zerr.Error)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		if msg := z.Message(); msg != "" {
			messages = append(messages, msg)
		}
		current = errors.Unwrap(current)
	}
	return messages
}

// Fields returns the zerr metadata of every layer of err as slog key/value
// pairs. When a key repeats, the outermost value wins.
func Fields(err error) []any {
	var fields []any
	seen := make(map[string]bool)
	for current := err; current != nil; current = errors.Unwrap(current) {
		z, ok := current.(*zerr.Error)
		if !ok {
			continue
		}
		meta := z.Metadata()
		for _, key := range slices.Sorted(maps.Keys(meta)) {
			if seen[key] {
				continue
			}
			seen[key] = true
			fields = append(fields, slog.Any(key, meta[key]))
		}
	}
	return fields
}
