package witcli

import (
	"log/slog"
	"os"

	"github.com/bytecodealliance/wit-bindgen-c/internal/logging"
)

// Logger returns a [slog.Logger] that writes to stderr at a level chosen by
// the verbose and debug flags.
func Logger(verbose, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	} else if verbose {
		level = slog.LevelInfo
	}
	return logging.Logger(os.Stderr, level)
}
