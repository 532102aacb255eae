package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()))

const (
	ansiReset  = "\033[0m"
	ansiGray   = "\033[1;90m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiCyan   = "\033[36m"
)

func color(val string) string {
	if noColor {
		return ""
	}
	return val
}

var levelColors = map[LogLevel]string{
	LevelTrace: ansiGray,
	LevelDebug: ansiCyan,
	LevelInfo:  ansiGreen,
	LevelWarn:  ansiYellow,
	LevelError: ansiRed,
}

type consoleLogger struct {
	mu       *sync.Mutex
	w        io.Writer
	level    LogLevel
	prefixes []string
	metadata map[string]any
}

var _ Logger = (*consoleLogger)(nil)

// NewConsole returns a Logger that writes human-readable lines to stderr,
// with ANSI colors when stderr is a terminal.
func NewConsole(level LogLevel) Logger {
	return &consoleLogger{mu: &sync.Mutex{}, w: os.Stderr, level: level}
}

// NewConsoleWithWriter is NewConsole writing to w instead of stderr.
func NewConsoleWithWriter(w io.Writer, level LogLevel) Logger {
	return &consoleLogger{mu: &sync.Mutex{}, w: w, level: level}
}

func (c *consoleLogger) clone() *consoleLogger {
	return &consoleLogger{
		mu:       c.mu,
		w:        c.w,
		level:    c.level,
		prefixes: c.prefixes,
		metadata: c.metadata,
	}
}

func (c *consoleLogger) With(metadata map[string]any) Logger {
	clone := c.clone()
	clone.metadata = mergeMetadata(c.metadata, metadata)
	return clone
}

func (c *consoleLogger) WithPrefix(prefix string) Logger {
	clone := c.clone()
	clone.prefixes = append(append([]string{}, c.prefixes...), prefix)
	return clone
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level
}

func (c *consoleLogger) log(level LogLevel, msg string, args ...any) {
	if !c.IsLevelEnabled(level) {
		return
	}
	var sb strings.Builder
	sb.WriteString(color(ansiGray))
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString(color(ansiReset))
	sb.WriteString(fmt.Sprintf(" %s%-5s%s ", color(levelColors[level]), level, color(ansiReset)))
	if len(c.prefixes) > 0 {
		sb.WriteString(strings.Join(c.prefixes, " "))
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf(msg, args...))
	if len(c.metadata) > 0 {
		keys := make([]string, 0, len(c.metadata))
		for k := range c.metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s%s=%v%s", color(ansiGray), k, c.metadata[k], color(ansiReset)))
		}
	}
	sb.WriteString("\n")
	c.mu.Lock()
	fmt.Fprint(c.w, sb.String())
	c.mu.Unlock()
}

func (c *consoleLogger) Trace(msg string, args ...any) {
	c.log(LevelTrace, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...any) {
	c.log(LevelDebug, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...any) {
	c.log(LevelInfo, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...any) {
	c.log(LevelWarn, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...any) {
	c.log(LevelError, msg, args...)
}
