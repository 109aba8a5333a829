package output

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// NewDiagnosticsLogger builds the slog.Logger used for structured,
// machine-parseable debug traces (HTTP calls, subprocess invocations,
// cache hits) that sit alongside the human-facing Logger rather than
// replacing it. Output goes to stderr so it never interleaves with
// --json stdout. In JSON mode diagnostics are dropped entirely: a
// machine consumer of --json output should see only the command's JSON
// result on stdout.
func NewDiagnosticsLogger(verbose int, noColor, jsonMode bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose >= 1 {
		level = slog.LevelInfo
	}
	if verbose >= 2 {
		level = slog.LevelDebug
	}
	if jsonMode {
		return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	if noColor {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
