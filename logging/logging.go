package logging

import (
	"fmt"
	"log"
	"strings"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// ParseLevel translates a string representation of a log level (case-insensitive) back to its enum
func ParseLevel(level string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO", "":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Sink receives log messages which pass a Logger's level threshold, in addition to local output
type Sink func(level int, msg string)

// Logger prints leveled messages through the standard logger, optionally
// forwarding them to a Sink (such as the coordinator's log service)
type Logger struct {
	source string
	level  int
	sink   Sink
}

// New creates a Logger which prints messages at or above level, prefixed by source
func New(source string, level int) *Logger {
	return &Logger{source: source, level: level}
}

// WithSink returns a copy of this Logger which also forwards messages to sink
func (l *Logger) WithSink(sink Sink) *Logger {
	return &Logger{source: l.source, level: l.level, sink: sink}
}

// Enabled returns true iff messages at the given level would be printed
func (l *Logger) Enabled(level int) bool {
	return level >= l.level
}

// Logf prints a formatted message at the given level
func (l *Logger) Logf(level int, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Printf("%s: level [%s]: %s", l.source, LogLevelToString(level), msg)
	if l.sink != nil {
		l.sink(level, msg)
	}
}

// Debugf prints a formatted message at DebugLevel
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logf(DebugLevel, format, args...)
}

// Infof prints a formatted message at InfoLevel
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(InfoLevel, format, args...)
}

// Warnf prints a formatted message at WarnLevel
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(WarnLevel, format, args...)
}

// Errorf prints a formatted message at ErrorLevel
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(ErrorLevel, format, args...)
}
