package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/xiview/internal/config"
	"github.com/dshills/xiview/internal/logging"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenLog creates the process logger from cfg. Output goes to cfg.File when
// set, otherwise to fallback; a nil fallback discards output. The returned
// closer releases the log file.
func OpenLog(cfg config.LogConfig, prefix string, fallback io.Writer) (*logging.Logger, io.Closer, error) {
	out, closer := fallback, io.Closer(nopCloser{})
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	if out == nil {
		out = io.Discard
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Output: out,
		Prefix: prefix,
	})
	return logger, closer, nil
}
