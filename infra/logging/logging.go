// Package logging builds the application logger. The TUI owns the terminal, so logs
// go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/log"
)

// New returns a kratos logger writing to path, filtered at level, plus a closer for the
// file. An empty path discards everything.
func New(path, level string) (log.Logger, io.Closer, error) {
	if path == "" {
		return log.NewStdLogger(io.Discard), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return Wrap(log.NewStdLogger(f), level), f, nil
}

// Wrap adds timestamp and caller fields and a level filter to base.
func Wrap(base log.Logger, level string) log.Logger {
	logger := log.With(base,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(level)))
}
