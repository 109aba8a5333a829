package main

import (
	"context"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/output"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/release"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/supervisor"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/version"
	"github.com/spf13/cobra"
)

var (
	startForeground      bool
	startSkipUpdateCheck bool
	startMithril         bool
	startMithrilSet      bool
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Resolve binaries, bootstrap chain data if needed, and start the node",
		Long: `start resolves cardano-node/cardano-cli for the host (downloading and
caching a release if none is cached yet), checks for a newer self-update
unless --skip-update-check is given, bootstraps the chain database from a
Mithril snapshot if the database is empty and Mithril is enabled, and then
launches the node.`,
		RunE: runStart,
	}
	cmd.Flags().BoolVar(&startForeground, "foreground", false,
		"Run the node in the foreground and block until it exits")
	cmd.Flags().BoolVar(&startSkipUpdateCheck, "skip-update-check", false,
		"Skip the self-update check before starting")
	cmd.Flags().BoolVar(&startMithril, "mithril", true,
		"Bootstrap chain data from a Mithril snapshot if the database is empty")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		startMithrilSet = cmd.Flags().Changed("mithril")
	}
	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ac := appContextFrom(ctx)
	cfg := ac.cfg
	logger := ac.logger

	mithrilEnabled := cfg.Mithril.Enabled
	if startMithrilSet {
		mithrilEnabled = startMithril
	}

	if !startSkipUpdateCheck {
		if err := checkForUpdateAndWarn(ctx, ac); err != nil {
			logger.Warn("update check failed, continuing with current version: %v", err)
		}
	}

	progress := output.NewProgress(4)

	progress.Stage("resolving cardano-node and cardano-cli")
	nodePath, cliPath, err := resolveBinaries(ctx, ac)
	if err != nil {
		return err
	}

	sup := supervisor.New(cfg, nodePath, cliPath)

	progress.Stage("bootstrapping chain data")
	if mithrilEnabled && !sup.HasChainData() {
		logger.Info("no chain data found, bootstrapping from Mithril snapshot")
		if err := bootstrapFromSnapshotDigest(ctx, ac, ""); err != nil {
			return err
		}
	}

	progress.Stage("preparing network configuration")
	networkConfig, err := networkConfigPath(ctx, ac)
	if err != nil {
		return err
	}

	progress.Stage("starting cardano-node")
	logger.Info("starting cardano-node (%s)", cfg.Network)
	opts := supervisor.StartOptions{
		Foreground:        startForeground,
		NetworkConfigPath: networkConfig,
	}
	if err := sup.Start(ctx, opts); err != nil {
		if orcherrors.Is(err, orcherrors.KindNodeStartFailed) {
			var logTail string
			if oe, ok := err.(*orcherrors.Error); ok {
				logTail = oe.LogTail
			}
			logger.PrintNodeError(&output.NodeErrorInfo{
				NodeName: "cardano-node",
				NodeDir:  cfg.Paths().Root,
				LogPath:  cfg.Paths().NodeLog,
				LogLines: strings.Split(logTail, "\n"),
				Error:    err,
				Command:  nodePath,
				WorkDir:  cfg.Paths().Root,
			})
		}
		return err
	}

	progress.Done("node started")
	if !startForeground {
		logger.Success("node started")
	}
	return nil
}

// checkForUpdateAndWarn checks the configured manifest for a newer
// orchestrator release and prints a notice; it never applies an update
// itself — that is `update`'s job — so `start` never risks replacing its
// own running binary mid-startup.
func checkForUpdateAndWarn(ctx context.Context, ac *appContext) error {
	client := release.NewClient(ac.cfg.Update.ManifestURL, ac.cfg.Update.Mirrors, userAgent())
	update, err := client.Check(ctx, version.Version)
	if err != nil {
		return err
	}
	if update == nil {
		return nil
	}
	if update.BelowFloor {
		ac.logger.Warn("running version %s is below the minimum supported version %s; run `cardano-orchestrator update`", version.Version, update.Manifest.MinVersion)
		return nil
	}
	ac.logger.Info("update available: %s (run `cardano-orchestrator update` to apply)", update.Manifest.Version)
	return nil
}

