package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()))

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

const (
	reset      = "\033[0m"
	gray       = "\033[1;90m"
	green      = "\033[32m"
	yellowBold = "\033[33;1m"
	redBold    = "\033[31;1m"
	cyanBold   = "\033[36;1m"
	blueBold   = "\033[34;1m"
)

type consoleLogger struct {
	writer   io.Writer
	mutex    *sync.Mutex
	logLevel LogLevel
	prefixes []string
	metadata map[string]any
}

var _ Logger = (*consoleLogger)(nil)

// NewConsole returns a Logger that writes human-readable lines to stderr.
// Colors are suppressed when stderr is not a terminal.
func NewConsole(level LogLevel) Logger {
	return &consoleLogger{
		writer:   os.Stderr,
		mutex:    &sync.Mutex{},
		logLevel: level,
	}
}

// NewConsoleWithWriter returns a console Logger writing to the given writer.
func NewConsoleWithWriter(level LogLevel, w io.Writer) Logger {
	return &consoleLogger{
		writer:   w,
		mutex:    &sync.Mutex{},
		logLevel: level,
	}
}

func (c *consoleLogger) clone() *consoleLogger {
	metadata := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{
		writer:   c.writer,
		mutex:    c.mutex,
		logLevel: c.logLevel,
		prefixes: slices.Clone(c.prefixes),
		metadata: metadata,
	}
}

func (c *consoleLogger) With(metadata map[string]any) Logger {
	l := c.clone()
	for k, v := range metadata {
		l.metadata[k] = v
	}
	return l
}

func (c *consoleLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		l.prefixes = append(l.prefixes, prefix)
	}
	return l
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *consoleLogger) write(level LogLevel, levelColor, msgColor, msg string, args ...any) {
	if !c.IsLevelEnabled(level) {
		return
	}
	line := fmt.Sprintf(msg, args...)
	if len(c.prefixes) > 0 {
		line = strings.Join(c.prefixes, " ") + " " + line
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	suffix := c.metadataSuffix()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintf(c.writer, "%s[%s]%s %s[%-5s]%s %s%s%s%s\n",
		color(gray), ts, color(reset),
		color(levelColor), level, color(reset),
		color(msgColor), line, suffix, color(reset))
}

func (c *consoleLogger) metadataSuffix() string {
	if len(c.metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.metadata))
	for k := range c.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, c.metadata[k])
	}
	return sb.String()
}

func (c *consoleLogger) Trace(msg string, args ...any) {
	c.write(LevelTrace, cyanBold, gray, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...any) {
	c.write(LevelDebug, blueBold, green, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...any) {
	c.write(LevelInfo, yellowBold, "", msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...any) {
	c.write(LevelWarn, yellowBold, yellowBold, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...any) {
	c.write(LevelError, redBold, redBold, msg, args...)
}
