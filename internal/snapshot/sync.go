package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// SyncOptions configures a single Sync invocation.
type SyncOptions struct {
	MithrilDir string // data_dir/mithril, holds the ephemeral archive
	DBPath     string // data_dir/db
	BackupPath string // data_dir/db.backup
	Digest     string // empty: use the latest snapshot
}

// Sync fetches, verifies and extracts a Mithril snapshot into dbPath, the
// operation behind `mithril download`. Digest verification and thin
// signer sets are non-fatal warnings returned alongside success: the
// certificate chain, not the raw hash, is the authoritative trust anchor.
func (c *Client) Sync(ctx context.Context, downloader *Downloader, opts SyncOptions, onProgress ProgressFunc) (warnings []string, err error) {
	var snap *Snapshot
	if opts.Digest != "" {
		snap, err = c.SnapshotByDigest(ctx, opts.Digest)
	} else {
		snap, err = c.LatestSnapshot(ctx)
	}
	if err != nil {
		return nil, err
	}

	chainWarnings, err := c.VerifyCertificateChain(ctx, snap.CertificateHash)
	warnings = append(warnings, chainWarnings...)
	if err != nil {
		return warnings, err
	}

	if err := CheckDiskSpace(opts.MithrilDir, uint64(snap.Size)*2); err != nil {
		return warnings, err
	}

	if len(snap.Locations) == 0 {
		return warnings, orcherrors.New(orcherrors.KindSnapshot, "snapshot.Sync", "snapshot has no download locations")
	}

	archivePath := filepath.Join(opts.MithrilDir, snap.Digest+archiveSuffix(snap.Locations[0]))
	actualHash, err := downloader.Download(ctx, snap.Locations[0], archivePath, snap.Size, onProgress)
	if err != nil {
		return warnings, err
	}

	if !VerifyDigest(actualHash, snap.Digest) {
		warnings = append(warnings, "downloaded archive hash does not match the snapshot digest prefix; proceeding on certificate-chain trust")
	}

	if err := PrepareDBDirectory(opts.DBPath, opts.BackupPath); err != nil {
		return warnings, err
	}
	if err := Extract(archivePath, opts.DBPath); err != nil {
		return warnings, err
	}
	if err := FlattenIfNested(opts.DBPath); err != nil {
		return warnings, err
	}
	if err := ValidateExtractedDB(opts.DBPath); err != nil {
		return warnings, err
	}

	os.Remove(archivePath)

	return warnings, nil
}

func archiveSuffix(url string) string {
	switch {
	case hasSuffixAny(url, ".tar.zst", ".zst"):
		return ".tar.zst"
	case hasSuffixAny(url, ".tar.gz", ".tgz"):
		return ".tar.gz"
	case hasSuffixAny(url, ".tar.lz4", ".lz4"):
		return ".tar.lz4"
	default:
		return ".tar.zst"
	}
}

func hasSuffixAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}
