package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// JSONLogEntry defines a log entry rendered as one JSON object per line.
type JSONLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// String renders the entry as JSON.
func (e JSONLogEntry) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		log.Printf("json.Marshal: %v", err)
	}
	return string(out)
}

type jsonLogger struct {
	mu       *sync.Mutex
	w        io.Writer
	level    LogLevel
	prefixes []string
	metadata map[string]any
	ts       *time.Time // for unit testing
}

var _ Logger = (*jsonLogger)(nil)

// NewJSON returns a Logger that writes one JSON entry per line to stdout.
func NewJSON(level LogLevel) Logger {
	return &jsonLogger{mu: &sync.Mutex{}, w: os.Stdout, level: level}
}

// NewJSONWithWriter is NewJSON writing to w instead of stdout.
func NewJSONWithWriter(w io.Writer, level LogLevel) Logger {
	return &jsonLogger{mu: &sync.Mutex{}, w: w, level: level}
}

func (c *jsonLogger) clone() *jsonLogger {
	return &jsonLogger{
		mu:       c.mu,
		w:        c.w,
		level:    c.level,
		prefixes: c.prefixes,
		metadata: c.metadata,
		ts:       c.ts,
	}
}

func (c *jsonLogger) With(metadata map[string]any) Logger {
	clone := c.clone()
	clone.metadata = mergeMetadata(c.metadata, metadata)
	return clone
}

func (c *jsonLogger) WithPrefix(prefix string) Logger {
	clone := c.clone()
	clone.prefixes = append(append([]string{}, c.prefixes...), prefix)
	return clone
}

func (c *jsonLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level
}

func (c *jsonLogger) log(severity string, level LogLevel, msg string, args ...any) {
	if !c.IsLevelEnabled(level) {
		return
	}
	ts := time.Now()
	if c.ts != nil {
		ts = *c.ts
	}
	message := fmt.Sprintf(msg, args...)
	if len(c.prefixes) > 0 {
		message = strings.Join(c.prefixes, " ") + " " + message
	}
	entry := JSONLogEntry{
		Timestamp: ts,
		Severity:  severity,
		Message:   message,
		Metadata:  c.metadata,
	}
	c.mu.Lock()
	fmt.Fprintln(c.w, entry.String())
	c.mu.Unlock()
}

func (c *jsonLogger) Trace(msg string, args ...any) {
	c.log("TRACE", LevelTrace, msg, args...)
}

func (c *jsonLogger) Debug(msg string, args ...any) {
	c.log("DEBUG", LevelDebug, msg, args...)
}

func (c *jsonLogger) Info(msg string, args ...any) {
	c.log("INFO", LevelInfo, msg, args...)
}

func (c *jsonLogger) Warn(msg string, args ...any) {
	c.log("WARNING", LevelWarn, msg, args...)
}

func (c *jsonLogger) Error(msg string, args ...any) {
	c.log("ERROR", LevelError, msg, args...)
}
