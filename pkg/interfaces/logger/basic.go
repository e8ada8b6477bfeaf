package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// BasicLogger prints log lines to stdout. It exists so examples and small
// programs have something visible without pulling a logging framework in.
type BasicLogger struct {
	mu     *sync.Mutex
	out    *os.File
	fields []Field
}

var _ Logger = (*BasicLogger)(nil)

// New returns a basic logger that writes to stdout.
func New() *BasicLogger {
	return &BasicLogger{
		mu:  &sync.Mutex{},
		out: os.Stdout,
	}
}

// Default returns the default basic logger implementation.
func Default() Logger {
	return New()
}

// With returns a logger that includes the fields on every line it prints.
func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := &BasicLogger{
		mu:     l.mu,
		out:    l.out,
		fields: make([]Field, 0, len(l.fields)+len(fields)),
	}
	next.fields = append(next.fields, l.fields...)
	next.fields = append(next.fields, fields...)
	return next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields...) }
func (l *BasicLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields...) }
func (l *BasicLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields...) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields...) }

func (l *BasicLogger) log(level, msg string, fields ...Field) {
	line := fmt.Sprintf("[%s] %s", level, msg)
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	if rendered := formatFields(all); rendered != "" {
		line += " " + rendered
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, line)
	l.mu.Unlock()
}

func formatFields(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	return strings.Join(parts, " ")
}
