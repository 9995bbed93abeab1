// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a logfmt logger writing to stderr that drops lines below
// the named level (debug, info, warn, error). Unknown names mean info.
func New(levelName string) log.Logger {
	return NewWithWriter(os.Stderr, levelName)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, levelName string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, levelOption(levelName))
}

func levelOption(name string) level.Option {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
