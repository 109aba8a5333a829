package config

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// configFetchTimeout bounds the lazy network-config download. Unlike
// snapshot archives or update bundles, the node's config.json is a small
// JSON document, so it gets the same "small request" 30s default the rest
// of the orchestrator's non-streaming HTTP calls use.
const configFetchTimeout = 30 * time.Second

// EnsureNetworkConfig returns the path to the network-specific config.json
// the node's --config flag expects, downloading it from the network's
// well-known config bundle URL on first use if it is not already present.
// A config the operator has placed there manually is never overwritten.
func EnsureNetworkConfig(ctx context.Context, cfg *Configuration, userAgent string) (string, error) {
	path := cfg.Paths().NetworkConfig
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to stat network config", err)
	}

	url := cfg.Network.Defaults().ConfigURL
	if url == "" {
		return "", orcherrors.New(orcherrors.KindConfig, "config.EnsureNetworkConfig", "no config download URL registered for network "+string(cfg.Network))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to create config directory", err)
	}

	client := &http.Client{Timeout: configFetchTimeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindNetwork, "config.EnsureNetworkConfig", "failed to build request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindNetwork, "config.EnsureNetworkConfig", "failed to download network config", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", orcherrors.New(orcherrors.KindNetwork, "config.EnsureNetworkConfig", "unexpected HTTP status "+resp.Status)
	}

	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to create network config file", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to write network config", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to finalize network config", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", orcherrors.Wrap(orcherrors.KindIO, "config.EnsureNetworkConfig", "failed to install network config", err)
	}

	return path, nil
}
