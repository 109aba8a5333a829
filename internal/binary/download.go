package binary

import (
	"context"
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/hashicorp/go-getter"
)

// downloadAsset fetches a release asset into a fresh temp directory using
// go-getter, which handles the http transport, redirect following and
// atomic directory staging for us.
func downloadAsset(ctx context.Context, url, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "binary.downloadAsset", "failed to create staging directory", err)
	}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  filepath.Join(destDir, "asset"),
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return orcherrors.Wrap(orcherrors.KindNetwork, "binary.downloadAsset", "failed to download release asset", err)
	}
	return nil
}
