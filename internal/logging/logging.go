// Package logging builds the structured logger used by sitesctl.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// Prefix tags every log line written by sitesctl.
const Prefix = "sitesctl"

// New returns a logger writing to w at the named level ("debug", "info", "warn",
// "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  lvl,
	}), nil
}

// ParseLevel converts a level name into a log level. Empty selects info.
func ParseLevel(level string) (log.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	if trimmed == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(trimmed)
	if err != nil {
		return log.InfoLevel, fmt.Errorf(messages.LogInvalidLevelFmt, level)
	}
	return lvl, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
