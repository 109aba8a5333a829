package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/binary"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/platform"
)

// resolveBinaries returns a validated cardano-node and cardano-cli path
// for ac's configuration, honoring explicit NodeBinary/CLIBinary pins in
// the config and otherwise resolving (and caching) the latest release for
// the detected host platform.
func resolveBinaries(ctx context.Context, ac *appContext) (nodePath, cliPath string, err error) {
	cfg := ac.cfg

	if cfg.NodeBinary != "" && cfg.CLIBinary != "" {
		return cfg.NodeBinary, cfg.CLIBinary, nil
	}

	ac.diag.Info("detecting host platform")
	profile, err := platform.Detect(ctx)
	if err != nil {
		return "", "", err
	}
	ac.diag.Debug("host profile", "os", profile.OS, "arch", profile.Arch,
		"distro", profile.Distro, "distro_version", profile.DistroVersion, "tier", profile.Tier.String())

	resolver := binary.NewResolver(cfg.Paths().Binaries, "")

	nodeVersion := ""
	nodePath = cfg.NodeBinary
	if nodePath == "" {
		ac.diag.Info("resolving cardano-node")
		path, resolvedVersion, err := resolver.ResolveNode(ctx, profile, "")
		if err != nil {
			return "", "", err
		}
		ac.diag.Debug("resolved cardano-node", "version", resolvedVersion, "path", path)
		nodePath = path
		nodeVersion = resolvedVersion
	}

	cliPath = cfg.CLIBinary
	if cliPath == "" {
		path, err := resolver.ResolveCLI(ctx)
		if err != nil {
			// The CLI is only used for best-effort tip queries in `status`;
			// its absence should never block starting or stopping the node.
			ac.diag.Warn("cardano-cli unavailable, sync-progress queries will be omitted", "error", err.Error())
			return nodePath, "", nil
		}
		cliPath = path
	}

	// A freshly resolved node pulls in its matching CLI (or reuses the cache
	// untouched), so this is the natural point to prune every cached binary
	// other than the pair we just settled on.
	if nodeVersion != "" {
		cliVersion := strings.TrimPrefix(filepath.Base(cliPath), string(binary.KindCLI)+"-")
		if err := resolver.Cleanup(nodeVersion, cliVersion); err != nil {
			ac.diag.Warn("binary cache cleanup failed", "error", err.Error())
		}
	}

	return nodePath, cliPath, nil
}

// networkConfigPath returns the path BuildArgs should pass via --config,
// lazily downloading the network's config.json from its well-known bundle
// URL the first time it is needed. An operator-supplied file at the same
// path is never overwritten.
func networkConfigPath(ctx context.Context, ac *appContext) (string, error) {
	return config.EnsureNetworkConfig(ctx, ac.cfg, userAgent())
}
