// Package logger holds the default ports.Logger implementation.
package logger

import "log"

// StdLogger is a lightweight implementation backed by Go's log package.
// All levels are silent unless verbose mode is on; user-facing output goes
// through the CLI renderer instead.
type StdLogger struct {
	verbose bool
}

// NewStd creates a StdLogger.
func NewStd(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	l.emit("[DEBUG]", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	l.emit("[INFO]", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.emit("[WARN]", msg, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[ERROR]", msg, err, fields)
}

func (l *StdLogger) emit(level, msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println(level, msg, fields)
}
