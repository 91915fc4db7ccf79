// Package logger builds the [bullets.Logger] shared by every auto-release
// component.
//
//	log := logger.NewLogger(logger.ResolveLevel(logLevel, verbose))
//	log.Debug("Resolving versions")
//
// Tests use [NoLogger], which drops everything.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sgaunet/bullets"
)

var levels = map[string]bullets.Level{
	"debug": bullets.DebugLevel,
	"info":  bullets.InfoLevel,
	"warn":  bullets.WarnLevel,
	"error": bullets.ErrorLevel,
}

// ParseLevel maps a level name to its bullets level. Unknown names are info.
func ParseLevel(name string) bullets.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return bullets.InfoLevel
}

// ResolveLevel returns the effective level name: --verbose always wins over
// the configured level.
func ResolveLevel(logLevel string, verbose bool) string {
	if verbose {
		return "debug"
	}
	return logLevel
}

// NewLogger returns a stdout logger at logLevel.
func NewLogger(logLevel string) *bullets.Logger {
	return NewLoggerTo(os.Stdout, logLevel)
}

// NewLoggerTo returns a logger writing to w at logLevel.
func NewLoggerTo(w io.Writer, logLevel string) *bullets.Logger {
	log := bullets.New(w)
	log.SetLevel(ParseLevel(logLevel))
	return log
}

// NoLogger returns a logger that drops everything.
func NoLogger() *bullets.Logger {
	log := bullets.New(io.Discard)
	log.SetLevel(bullets.FatalLevel)
	return log
}
