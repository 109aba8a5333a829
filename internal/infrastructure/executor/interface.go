// Package executor abstracts subprocess invocation behind a narrow
// interface so callers that shell out to cardano-node/cardano-cli (version
// detection, tip queries) can be tested without spawning real binaries.
package executor

import (
	"context"
	"time"
)

// CommandExecutor runs an external command and collects its combined
// output. The caller is responsible for validating and sanitizing any
// argument built from untrusted input.
type CommandExecutor interface {
	// ExecuteWithTimeout runs name with args, honoring ctx for cancellation,
	// and returns combined stdout+stderr.
	ExecuteWithTimeout(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultTimeout is the base timeout for version-detection invocations of
// cardano-node/cardano-cli --version, which return near-instantly;
// binary.DetectVersion allows twice this value.
const DefaultTimeout = 5 * time.Second
