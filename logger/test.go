package logger

import (
	"fmt"
	"strings"
	"sync"
)

// TestLogEntry is a single recorded log call.
type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []any
}

// TestLogger records log calls for assertions in tests.
type TestLogger struct {
	mutex    sync.Mutex
	logs     []TestLogEntry
	metadata map[string]any
	prefixes []string
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a new Logger instance useful for testing
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Logs returns a copy of the recorded entries.
func (c *TestLogger) Logs() []TestLogEntry {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]TestLogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Contains reports whether any recorded entry at the given severity has a
// formatted message containing substr.
func (c *TestLogger) Contains(severity, substr string) bool {
	for _, entry := range c.Logs() {
		if entry.Severity != severity {
			continue
		}
		if strings.Contains(fmt.Sprintf(entry.Message, entry.Arguments...), substr) {
			return true
		}
	}
	return false
}

func (c *TestLogger) record(severity, msg string, args ...any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logs = append(c.logs, TestLogEntry{severity, msg, args})
}

// With records into the same logger so tests can assert on entries from
// derived loggers.
func (c *TestLogger) With(metadata map[string]any) Logger {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.metadata == nil {
		c.metadata = make(map[string]any, len(metadata))
	}
	for k, v := range metadata {
		c.metadata[k] = v
	}
	return c
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.prefixes = append(c.prefixes, prefix)
	return c
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool { return true }

func (c *TestLogger) Trace(msg string, args ...any) { c.record("TRACE", msg, args...) }
func (c *TestLogger) Debug(msg string, args ...any) { c.record("DEBUG", msg, args...) }
func (c *TestLogger) Info(msg string, args ...any)  { c.record("INFO", msg, args...) }
func (c *TestLogger) Warn(msg string, args ...any)  { c.record("WARNING", msg, args...) }
func (c *TestLogger) Error(msg string, args ...any) { c.record("ERROR", msg, args...) }
