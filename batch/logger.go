package batch

import (
	"fmt"
	"io"
	"log"
	"os"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for per-call detail, such as which ids went into a chunk.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for dispatch and resolution progress.
	LogLevelInfo
	// LogLevelWarn is for situations that might require attention.
	LogLevelWarn
	// LogLevelError is for chunk and execution failures.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a level name such as "info" or "ERROR" into a
// LogLevel. Unknown names return LogLevelInfo and false.
func ParseLogLevel(name string) (LogLevel, bool) {
	switch name {
	case "debug", "DEBUG":
		return LogLevelDebug, true
	case "info", "INFO":
		return LogLevelInfo, true
	case "warn", "WARN":
		return LogLevelWarn, true
	case "error", "ERROR":
		return LogLevelError, true
	default:
		return LogLevelInfo, false
	}
}

// Logger is used by ThrottledBatch (and the coalesce package) to report
// progress. Logging is an observability side channel; nothing depends on
// what is written. The Logger is optional - if not provided, no logging
// occurs.
type Logger interface {
	// Log writes a log message at the specified level.
	// The message is formatted using fmt.Sprintf if args are provided.
	Log(level LogLevel, format string, args ...interface{})

	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoOpLogger discards all log messages. It is the default logger.
type NoOpLogger struct{}

// Log implements the Logger interface.
func (n *NoOpLogger) Log(level LogLevel, format string, args ...interface{}) {}

// Debug implements the Logger interface.
func (n *NoOpLogger) Debug(format string, args ...interface{}) {}

// Info implements the Logger interface.
func (n *NoOpLogger) Info(format string, args ...interface{}) {}

// Warn implements the Logger interface.
func (n *NoOpLogger) Warn(format string, args ...interface{}) {}

// Error implements the Logger interface.
func (n *NoOpLogger) Error(format string, args ...interface{}) {}

// SimpleLogger writes leveled lines through two standard library loggers.
// Debug and Info go to Out, Warn and Error go to Err. Each line carries a
// timestamp (when the underlying log.Logger has flags set), the level and
// the formatted message.
type SimpleLogger struct {
	// MinLevel is the minimum log level to output.
	MinLevel LogLevel

	Out *log.Logger
	Err *log.Logger
}

// NewSimpleLogger creates a SimpleLogger writing to stdout and stderr with
// standard timestamps.
func NewSimpleLogger(minLevel LogLevel) *SimpleLogger {
	return &SimpleLogger{
		MinLevel: minLevel,
		Out:      log.New(os.Stdout, "", log.LstdFlags),
		Err:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewWriterLogger creates a SimpleLogger that sends every level to w without
// timestamps. It is mostly useful for tests and for the CLI's --log-file.
func NewWriterLogger(w io.Writer, minLevel LogLevel) *SimpleLogger {
	l := log.New(w, "", 0)
	return &SimpleLogger{
		MinLevel: minLevel,
		Out:      l,
		Err:      l,
	}
}

// Log implements the Logger interface.
func (s *SimpleLogger) Log(level LogLevel, format string, args ...interface{}) {
	if level < s.MinLevel {
		return
	}

	line := fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...))
	switch level {
	case LogLevelWarn, LogLevelError:
		s.Err.Print(line)
	default:
		s.Out.Print(line)
	}
}

// Debug implements the Logger interface.
func (s *SimpleLogger) Debug(format string, args ...interface{}) {
	s.Log(LogLevelDebug, format, args...)
}

// Info implements the Logger interface.
func (s *SimpleLogger) Info(format string, args ...interface{}) {
	s.Log(LogLevelInfo, format, args...)
}

// Warn implements the Logger interface.
func (s *SimpleLogger) Warn(format string, args ...interface{}) {
	s.Log(LogLevelWarn, format, args...)
}

// Error implements the Logger interface.
func (s *SimpleLogger) Error(format string, args ...interface{}) {
	s.Log(LogLevelError, format, args...)
}
