// Package console is a logger backend writing human-readable output to stderr.
package console

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger implements logger.Backend using charmbracelet/log.
type Logger struct {
	logger *log.Logger
}

// Params configures a console Logger.
type Params struct {
	Debug bool
}

// New creates a console logger writing to stderr.
func New(params Params) *Logger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	return &Logger{
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
		}),
	}
}

// Debug writes a message at DEBUG level.
func (c *Logger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func (c *Logger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func (c *Logger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func (c *Logger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}

// Fatal writes a message at FATAL level and exits.
func (c *Logger) Fatal(message string, keyvals ...any) {
	c.logger.Fatal(message, keyvals...)
}
