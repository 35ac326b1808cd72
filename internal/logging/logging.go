// Package logging builds the structured logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "todoboard"

// New returns a text logger writing to w. An empty level means "warn";
// debug forces the debug level regardless of level.
func New(w io.Writer, level string, debug bool) (*charmLog.Logger, error) {
	if w == nil {
		w = io.Discard
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := charmLog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	if debug {
		lvl = charmLog.DebugLevel
	}
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           lvl,
		Prefix:          Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *charmLog.Logger {
	return charmLog.NewWithOptions(io.Discard, charmLog.Options{Level: charmLog.FatalLevel})
}
