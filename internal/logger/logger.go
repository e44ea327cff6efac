package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Logger interface defines the logging methods
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetOutput(out io.Writer)
	SetErrorOutput(out io.Writer)
	SetVerbose(enabled bool)
	SetQuiet(enabled bool)
	SetTimestamps(enabled bool)
	IsVerbose() bool
	IsQuiet() bool
}

// Level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelQuiet = "quiet"
)

// ConsoleLogger implements the Logger interface
type ConsoleLogger struct {
	output      io.Writer
	errOut      io.Writer
	verboseMode bool
	quietMode   bool
	timestamps  bool
	colors      bool
	mu          sync.Mutex
}

var (
	instance Logger
	once     sync.Once
)

// GetLogger returns the singleton instance
func GetLogger() Logger {
	once.Do(func() {
		instance = &ConsoleLogger{
			output: os.Stdout,
			errOut: os.Stderr,
			// Enable colors only if stdout is a terminal
			colors: term.IsTerminal(int(os.Stdout.Fd())),
		}
	})
	return instance
}

// New creates a standalone logger writing to out and errOut without colors.
// Tests use it to capture output.
func New(out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{output: out, errOut: errOut}
}

// SetVerbose enables or disables verbose mode globally
func SetVerbose(verbose bool) {
	GetLogger().SetVerbose(verbose)
}

func IsVerbose() bool {
	return GetLogger().IsVerbose()
}

func SetQuiet(quiet bool) {
	GetLogger().SetQuiet(quiet)
}

func IsQuiet() bool {
	return GetLogger().IsQuiet()
}

// SetTimestamps prefixes every line with a timestamp. The API server turns it on.
func SetTimestamps(enabled bool) {
	GetLogger().SetTimestamps(enabled)
}

// SetLevel switches the global logger to the named level.
func SetLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelInfo:
		SetQuiet(false)
		SetVerbose(false)
	case LevelDebug:
		SetQuiet(false)
		SetVerbose(true)
	case LevelQuiet:
		SetVerbose(false)
		SetQuiet(true)
	default:
		return fmt.Errorf("unknown log level %q (expected %s, %s or %s)", level, LevelDebug, LevelInfo, LevelQuiet)
	}
	return nil
}

// Global helper functions for convenience
func Info(format string, args ...any)    { GetLogger().Info(format, args...) }
func Debug(format string, args ...any)   { GetLogger().Debug(format, args...) }
func Success(format string, args ...any) { GetLogger().Success(format, args...) }
func Warn(format string, args ...any)    { GetLogger().Warn(format, args...) }
func Error(format string, args ...any)   { GetLogger().Error(format, args...) }

// -------------------- Implementation --------------------

func (l *ConsoleLogger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = out
}

func (l *ConsoleLogger) SetErrorOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut = out
}

func (l *ConsoleLogger) SetVerbose(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verboseMode = enabled
}

func (l *ConsoleLogger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verboseMode
}

func (l *ConsoleLogger) SetQuiet(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quietMode = enabled
}

func (l *ConsoleLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quietMode
}

func (l *ConsoleLogger) SetTimestamps(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = enabled
}

func (l *ConsoleLogger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}

// log writes one line. Debug lines always carry a timestamp.
func (l *ConsoleLogger) log(stderr bool, icon, plain, color string, stamp bool, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.output
	if stderr {
		out = l.errOut
	}

	prefix := plain
	if l.colors {
		prefix = icon
	}
	if stamp || l.timestamps {
		prefix = fmt.Sprintf("[%s] %s", l.timestamp(), prefix)
	}

	msg := fmt.Sprintf(format, args...)
	if l.colors {
		fmt.Fprintf(out, "%s%s %s%s\n", color, prefix, msg, resetColor)
	} else {
		fmt.Fprintf(out, "%s %s\n", prefix, msg)
	}
}

func (l *ConsoleLogger) enabled(verboseOnly bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if verboseOnly {
		return l.verboseMode
	}
	return !l.quietMode
}

const (
	blueColor   = "\033[34m"
	greenColor  = "\033[32m"
	yellowColor = "\033[33m"
	redColor    = "\033[31m"
	grayColor   = "\033[90m"
	resetColor  = "\033[0m"
)

func (l *ConsoleLogger) Info(format string, args ...any) {
	if !l.enabled(false) {
		return
	}
	l.log(false, "ℹ️", "INFO", blueColor, false, format, args...)
}

func (l *ConsoleLogger) Debug(format string, args ...any) {
	if !l.enabled(true) {
		return
	}
	l.log(false, "🔍", "DEBUG", grayColor, true, format, args...)
}

func (l *ConsoleLogger) Success(format string, args ...any) {
	if !l.enabled(false) {
		return
	}
	l.log(false, "✓", "SUCCESS", greenColor, false, format, args...)
}

func (l *ConsoleLogger) Warn(format string, args ...any) {
	if !l.enabled(false) {
		return
	}
	l.log(false, "⚠", "WARN", yellowColor, false, format, args...)
}

// Error is printed even in quiet mode.
func (l *ConsoleLogger) Error(format string, args ...any) {
	l.log(true, "✗", "ERROR", redColor, false, format, args...)
}
