package config

import (
	"fmt"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// Validate checks structural invariants that loading alone does not
// enforce: port ranges, non-empty paths, and a resolvable public key.
func (c *Configuration) Validate() error {
	if c.DataDir == "" {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", "data_dir must not be empty")
	}
	if c.Node.Port <= 0 || c.Node.Port > 65535 {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", fmt.Sprintf("node.port %d out of range", c.Node.Port))
	}
	if c.Update.PublicKeyHex == "" {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", "update.public_key must not be empty")
	}
	if len(c.Update.PublicKeyHex) != 64 {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", "update.public_key must be 64 hex characters (32-byte Ed25519 key)")
	}
	if c.Mithril.Enabled && c.Mithril.AggregatorURL == "" {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", "mithril.aggregator_url must not be empty when mithril.enabled is true")
	}
	if c.Resources.MaxMemoryMB < 0 {
		return orcherrors.New(orcherrors.KindConfig, "config.Validate", "resources.max_memory_mb must not be negative")
	}
	return nil
}
