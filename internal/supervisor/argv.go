// Package supervisor owns the node subprocess's lifecycle: composing its
// argv/environment, starting it in foreground or background, probing
// liveness, and escalating through SIGINT/SIGTERM/SIGKILL on stop.
package supervisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
)

// BuildArgs composes the node's argv in the fixed order the node expects:
// the run subcommand, topology, database path, socket path, listen
// address, the network-specific config file, the network-specific testnet
// magic (mainnet has none), then any caller-supplied extra arguments
// verbatim.
func BuildArgs(cfg *config.Configuration, networkConfigPath string) []string {
	paths := cfg.Paths()
	args := []string{
		"run",
		"--topology", paths.TopologyFile,
		"--database-path", paths.DB,
		"--socket-path", cfg.Node.SocketPath,
		"--host-addr", cfg.Node.Host,
		"--port", strconv.Itoa(cfg.Node.Port),
		"--config", networkConfigPath,
	}

	if cfg.Network != config.NetworkMainnet {
		magic := cfg.Network.Defaults().Magic
		args = append(args, "--testnet-magic", strconv.Itoa(magic))
	}

	args = append(args, cfg.Node.ExtraArgs...)
	return args
}

// BuildRTSEnv composes the GHCRTS environment variable string from the
// resource configuration. An empty result means no GHCRTS override should
// be set at all.
func BuildRTSEnv(r config.ResourcesConfig) string {
	var parts []string
	if r.MaxMemoryMB > 0 {
		parts = append(parts, fmt.Sprintf("-M%dM", r.MaxMemoryMB))
	}
	if r.RTSThreads > 0 {
		parts = append(parts, fmt.Sprintf("-N%d", r.RTSThreads))
	}
	if r.MemoryCompaction {
		parts = append(parts, "-c")
	}
	return strings.Join(parts, " ")
}
