package logger

import (
	"fmt"
	"sync"
)

// TestLogEntry is one captured log call.
type TestLogEntry struct {
	Severity string
	Message  string
	Metadata map[string]any
}

// TestLogger captures log calls for assertions in tests. Derived loggers
// returned by With and WithPrefix record into the same backing slice, so a
// test can hand a TestLogger to code under test and inspect everything it
// logged regardless of how the logger was decorated along the way.
type TestLogger struct {
	mu       sync.Mutex
	entries  []TestLogEntry
	metadata map[string]any
}

var _ Logger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Entries returns a copy of everything logged so far.
func (c *TestLogger) Entries() []TestLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TestLogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// EntriesBySeverity returns the captured entries with the given severity.
func (c *TestLogger) EntriesBySeverity(severity string) []TestLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []TestLogEntry
	for _, e := range c.entries {
		if e.Severity == severity {
			out = append(out, e)
		}
	}
	return out
}

func (c *TestLogger) record(severity, msg string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, TestLogEntry{
		Severity: severity,
		Message:  fmt.Sprintf(msg, args...),
		Metadata: c.metadata,
	})
}

func (c *TestLogger) With(metadata map[string]any) Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = mergeMetadata(c.metadata, metadata)
	return c
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	return c
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return true
}

func (c *TestLogger) Trace(msg string, args ...any) {
	c.record("TRACE", msg, args...)
}

func (c *TestLogger) Debug(msg string, args ...any) {
	c.record("DEBUG", msg, args...)
}

func (c *TestLogger) Info(msg string, args ...any) {
	c.record("INFO", msg, args...)
}

func (c *TestLogger) Warn(msg string, args ...any) {
	c.record("WARNING", msg, args...)
}

func (c *TestLogger) Error(msg string, args ...any) {
	c.record("ERROR", msg, args...)
}
