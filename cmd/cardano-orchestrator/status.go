package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/binary"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/output"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/supervisor"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the node is running, its resource usage and sync progress",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ac := appContextFrom(ctx)
	cfg := ac.cfg

	// status never resolves or downloads a binary: the CLI path is only
	// needed for the best-effort tip query, so a cache miss simply means
	// sync-progress fields are omitted rather than triggering a download.
	cliPath := cfg.CLIBinary
	if cliPath == "" {
		if cached, err := binary.NewCache(cfg.Paths().Binaries).LatestCLI(); err == nil {
			cliPath = cached
		}
	}
	_ = ctx

	sup := supervisor.New(cfg, cfg.NodeBinary, cliPath)

	spinner := output.NewStatusSpinner()
	spinner.Start("querying node status")
	st, err := sup.Query()
	spinner.Stop()
	if err != nil {
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	printStatusText(ac, st)
	return nil
}

func printStatusText(ac *appContext, st *supervisor.Status) {
	if !st.Running {
		ac.logger.Print("node: not running")
		return
	}
	ac.logger.Bold("node: running (pid %d)", st.PID)
	ac.logger.Print("  uptime:   %s", fmtDuration(st.UptimeSecs))
	ac.logger.Print("  memory:   %d MB", st.RSSMB)
	if st.TipSlot > 0 || st.SyncProgress > 0 {
		ac.logger.Print("  sync:     %.1f%%", st.SyncProgress*100)
		ac.logger.Print("  tip slot: %d (epoch %d)", st.TipSlot, st.TipEpoch)
	}
}

func fmtDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
