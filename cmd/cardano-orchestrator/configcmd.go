package main

import (
	"encoding/json"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Dump the fully resolved configuration",
		Long: `config prints the Configuration cardano-orchestrator resolved for the
current --network/--data-dir/--config flags: network defaults overlaid
with config.toml, then flags. Useful for confirming
which config.toml (if any) was actually loaded.`,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	ac := appContextFrom(cmd.Context())
	cfg := ac.cfg

	ac.diag.Debug("config source", "source", cfg.Source.String())

	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	ac.logger.Print("# source: %s", cfg.Source)
	ac.logger.Print("%s", string(data))
	return nil
}
