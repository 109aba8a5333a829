package main

import (
	"encoding/json"
	"os"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/spf13/cobra"
)

var initForce bool

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory layout, a default topology.json and config.toml",
		Long: `init creates the on-disk layout under --data-dir (binaries/, db/, logs/,
config/, mithril/), writes a topology.json seeded with the network's
default bootstrap peers, and persists the resolved configuration to
config.toml. Existing files are left untouched unless --force is given.`,
		RunE: runInit,
	}
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing topology.json/config.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	ac := appContextFrom(cmd.Context())
	cfg := ac.cfg
	paths := cfg.Paths()

	for _, dir := range []string{paths.Binaries, paths.ConfigDir, paths.DB, paths.Logs, paths.Mithril} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "init", "failed to create "+dir, err)
		}
	}

	if err := writeTopology(paths.TopologyFile, cfg.Network); err != nil {
		return err
	}
	ac.logger.Success("wrote %s", paths.TopologyFile)

	configPath := flagConfig
	if configPath == "" {
		configPath = config.DefaultConfigPath(cfg.DataDir)
	}
	if _, err := os.Stat(configPath); err == nil && !initForce {
		ac.logger.Info("config.toml already exists at %s, leaving it in place (--force to overwrite)", configPath)
	} else {
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		ac.logger.Success("wrote %s", configPath)
	}

	ac.logger.Info("data directory ready at %s", cfg.DataDir)
	return nil
}

// topologyFile mirrors the on-disk shape documented for topology.json: a
// flat list of producer relays with a fixed valency of 1, the simplest
// configuration a single full node needs to bootstrap its peer set.
type topologyFile struct {
	Producers []topologyProducer `json:"Producers"`
}

type topologyProducer struct {
	Addr    string `json:"addr"`
	Port    int    `json:"port"`
	Valency int    `json:"valency"`
}

func writeTopology(path string, network config.Network) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		return nil
	}

	defaults := network.Defaults()
	tf := topologyFile{Producers: make([]topologyProducer, 0, len(defaults.DefaultTopology))}
	for _, peer := range defaults.DefaultTopology {
		tf.Producers = append(tf.Producers, topologyProducer{Addr: peer.Address, Port: peer.Port, Valency: 1})
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindSerialization, "init.writeTopology", "failed to marshal topology", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "init.writeTopology", "failed to write topology.json", err)
	}
	return nil
}
