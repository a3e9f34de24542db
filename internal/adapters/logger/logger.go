// Package logger implements ports.Logger on top of log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/spool/internal/core/ports"
)

// messager is implemented by zerr errors and yields the message without its cause chain.
type messager interface {
	Message() string
}

// Logger implements ports.Logger. The destination and format can be changed
// at runtime by the CLI before any work starts.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	jsonMode bool
}

// New creates a Logger that writes pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
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

// SetJSON switches between JSON records and the pretty handler.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

// Slog returns the underlying structured logger, used for request logs.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// rebuild must be called with mu held.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its cause chain. JSON mode keeps the error as an attribute.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(FormatChain(err))
}

// FormatChain renders an error and its zerr causes as an indented list:
//
//	Error: outer
//
//	  Caused by:
//	    → inner
func FormatChain(err error) string {
	var messages []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		messages = append(messages, m.Message())
		current = errors.Unwrap(current)
	}

	var b strings.Builder
	for i, msg := range messages {
		lines := strings.Split(msg, "\n")
		switch i {
		case 0:
			b.WriteString("Error: " + lines[0])
			for _, line := range lines[1:] {
				b.WriteString("\n       " + line)
			}
			continue
		case 1:
			b.WriteString("\n\n  Caused by:")
		}
		b.WriteString("\n    → " + lines[0])
		for _, line := range lines[1:] {
			b.WriteString("\n      " + line)
		}
	}
	return b.String()
}
