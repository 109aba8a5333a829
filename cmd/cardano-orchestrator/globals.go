// Package main is the cardano-orchestrator CLI entrypoint: a single static
// binary that profiles the host, resolves and caches cardano-node/
// cardano-cli, bootstraps chain data from a Mithril snapshot, supervises
// the node subprocess, and checks for and applies signed self-updates.
package main

import (
	"context"
	"log/slog"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/output"
)

// Local variables for persistent flag binding (cobra requires addressable
// vars, not struct fields, for PersistentFlags().*Var).
var (
	flagNetwork string
	flagDataDir string
	flagConfig  string
	flagNoColor bool
	flagJSON    bool
	flagVerbose int
)

type ctxKey int

const configCtxKey ctxKey = iota

// appContext bundles everything a subcommand's RunE needs beyond its own
// flags: the resolved configuration and the two loggers (human-facing and
// structured-diagnostic).
type appContext struct {
	cfg    *config.Configuration
	logger output.LoggerInterface
	diag   *slog.Logger
}

func withAppContext(ctx context.Context, ac *appContext) context.Context {
	return context.WithValue(ctx, configCtxKey, ac)
}

func appContextFrom(ctx context.Context) *appContext {
	ac, ok := ctx.Value(configCtxKey).(*appContext)
	if !ok {
		// Every RunE runs after persistentPreRunE has populated the
		// context; a missing value means a command was wired without
		// going through the root command, which is a bug, not a user
		// error.
		panic("cardano-orchestrator: appContext missing from command context")
	}
	return ac
}
