package main

import (
	"fmt"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/output"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/version"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the cardano-orchestrator command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardano-orchestrator",
		Short: "Profiles, resolves, syncs and supervises a single cardano-node",
		Long: `cardano-orchestrator manages the full lifecycle of a single cardano-node
instance on one host: it detects the platform, resolves and caches a
compatible cardano-node/cardano-cli release, bootstraps the chain database
from a certified Mithril snapshot, supervises the node process, and checks
for and applies signed self-updates.

Examples:
  # First-time setup against mainnet
  cardano-orchestrator init
  cardano-orchestrator start

  # Check node status as JSON
  cardano-orchestrator status --json

  # Pull a fresh Mithril snapshot before starting
  cardano-orchestrator mithril download
  cardano-orchestrator start --skip-update-check`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: persistentPreRunE,
	}

	cmd.PersistentFlags().StringVar(&flagNetwork, "network", "mainnet",
		"Cardano network (mainnet, testnet-a, testnet-b)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", config.DefaultDataDir(),
		"Base directory for binaries, chain data, logs and config")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Path to config.toml (default: <data-dir>/config.toml)")
	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false,
		"Output machine-readable JSON where the command supports it")
	cmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v",
		"Increase diagnostic log verbosity (-v, -vv)")

	cmd.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newStopCmd(),
		newStatusCmd(),
		newUpdateCmd(),
		newMithrilCmd(),
		newConfigCmd(),
		version.NewCmd("cardano-orchestrator", "cardano-node"),
	)

	return cmd
}

// persistentPreRunE resolves the Configuration for the requested network
// and data directory, validates it, configures the shared loggers, and
// stashes everything in the command's context for subcommands to pull out
// via appContextFrom.
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	network, err := config.ParseNetwork(flagNetwork)
	if err != nil {
		return err
	}

	cfg, err := config.Load(network, flagDataDir, flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-color") {
		cfg.NoColor = flagNoColor
	}
	if cmd.Flags().Changed("json") {
		cfg.JSON = flagJSON
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := output.NewLogger()
	logger.SetNoColor(cfg.NoColor)
	logger.SetVerbose(cfg.Verbose > 0)
	logger.SetJSONMode(cfg.JSON)

	diag := output.NewDiagnosticsLogger(cfg.Verbose, cfg.NoColor, cfg.JSON).With("run_id", uuid.NewString())

	cmd.SetContext(withAppContext(cmd.Context(), &appContext{
		cfg:    cfg,
		logger: logger,
		diag:   diag,
	}))
	return nil
}

// userAgent identifies this orchestrator to GitHub, the manifest mirrors
// and the Mithril aggregator.
func userAgent() string {
	return fmt.Sprintf("cardano-orchestrator/%s", version.Version)
}
