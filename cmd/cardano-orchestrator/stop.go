package main

import (
	"github.com/altuslabsxyz/cardano-orchestrator/internal/supervisor"
	"github.com/spf13/cobra"
)

var stopForce bool

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running node",
		Long: `stop escalates SIGINT, then SIGTERM, then SIGKILL against the
supervised node, waiting up to 30s, 10s and 1s respectively at each step.
--force skips straight to SIGKILL.`,
		RunE: runStop,
	}
	cmd.Flags().BoolVar(&stopForce, "force", false, "Send SIGKILL immediately instead of escalating")
	return cmd
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ac := appContextFrom(ctx)

	// Stop never needs to resolve or download a binary: it only signals an
	// already-running process by PID, so an empty node/cli path is fine.
	sup := supervisor.New(ac.cfg, "", "")
	if err := sup.Stop(ctx, stopForce); err != nil {
		return err
	}
	ac.logger.Success("node stopped")
	return nil
}
