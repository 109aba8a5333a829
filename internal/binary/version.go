package binary

import (
	"context"
	"regexp"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/infrastructure/executor"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// versionOutputPattern matches cardano-node/cardano-cli's `--version`
// output, e.g. "cardano-node 8.9.3 - linux-x86_64 - ghc-8.10".
var versionOutputPattern = regexp.MustCompile(`(?i)cardano-(?:node|cli)\s+(\d+\.\d+\.\d+(?:\.\d+)?)`)

// defaultExecutor runs --version subprocesses for DetectVersion. Tests
// substitute it with a fake via WithExecutor to avoid depending on a real
// cardano-node/cardano-cli binary being present.
var defaultExecutor executor.CommandExecutor = executor.NewOSCommandExecutor()

// WithExecutor temporarily overrides the executor DetectVersion uses and
// returns a restore function.
func WithExecutor(e executor.CommandExecutor) (restore func()) {
	prev := defaultExecutor
	defaultExecutor = e
	return func() { defaultExecutor = prev }
}

// DetectVersion runs "<binaryPath> --version" and parses the semantic
// version out of its output, allowing twice executor.DefaultTimeout.
func DetectVersion(ctx context.Context, binaryPath string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, executor.DefaultTimeout*2)
	defer cancel()

	out, err := defaultExecutor.ExecuteWithTimeout(timeoutCtx, binaryPath, "--version")
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindBinaryNotFound, "binary.DetectVersion", "failed to execute --version", err)
	}

	matches := versionOutputPattern.FindStringSubmatch(string(out))
	if len(matches) < 2 {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.DetectVersion", "unrecognized version output: "+strings.TrimSpace(string(out)))
	}
	return matches[1], nil
}
