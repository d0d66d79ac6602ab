// Package diaglog opens the append-only diagnostic side log. It is
// advisory only: when the file cannot be opened the returned logger
// discards everything, and aggregation proceeds untouched.
package diaglog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mlipski/tokengauge/internal/config"
)

// Path is the default diagnostic log location under the config dir.
func Path() string {
	return filepath.Join(config.ConfigDir(), "diagnostic.log")
}

// Open returns a logger appending structured lines to path. Enabled=false
// or any open failure yields a discard logger.
func Open(path string, enabled bool) zerolog.Logger {
	if !enabled {
		return zerolog.New(io.Discard)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.New(io.Discard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.New(io.Discard)
	}

	return zerolog.New(f).With().Timestamp().Logger()
}
