package release

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/selfupdate"
)

// ProgressFunc reports download progress while applying an update.
type ProgressFunc func(downloaded, total int64)

// ApplyOptions carries everything Apply needs beyond the manifest itself.
type ApplyOptions struct {
	PublicKeyHex   string
	CurrentVersion string
	CurrentExePath string
	BinaryName     string
	OnProgress     ProgressFunc
}

// Apply downloads the update described by manifest, verifies its hash and
// signature, and only then swaps it into place. Each step is strictly
// serial: a manifest is fetched before any hash is computed, the hash is
// computed before the signature is checked, and the signature is checked
// before any file on disk is touched. A hash mismatch is reported as its
// own error; a malformed signature and one that does not verify are
// reported identically.
func (m *Manifest) Apply(ctx context.Context, opts ApplyOptions) error {
	url, ok := m.DownloadURLFor(PlatformKey())
	if !ok {
		return orcherrors.New(orcherrors.KindUnsupportedPlatform, "release.Apply", "no download available for platform "+PlatformKey())
	}

	scratchDir, err := os.MkdirTemp("", "orchestrator-apply-*")
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "release.Apply", "failed to create scratch directory", err)
	}
	defer os.RemoveAll(scratchDir)

	archivePath := filepath.Join(scratchDir, "update.download")
	if err := downloadToFile(ctx, url, archivePath, m.Size, opts.OnProgress); err != nil {
		return err
	}

	actualHash, err := HashFile(archivePath)
	if err != nil {
		return err
	}
	if hex.EncodeToString(actualHash[:]) != m.SHA256 {
		return orcherrors.HashMismatch("release.Apply", m.SHA256, hex.EncodeToString(actualHash[:]))
	}

	if len(m.Signature) != ed25519.SignatureSize*2 {
		return orcherrors.New(orcherrors.KindSignatureInvalid, "release.Apply", "update rejected")
	}
	if err := VerifySignature(opts.PublicKeyHex, actualHash, m.Signature); err != nil {
		return orcherrors.New(orcherrors.KindSignatureInvalid, "release.Apply", "update rejected")
	}

	if bundlePath, isSingleFile := selfupdate.Mode(); isSingleFile {
		return selfupdate.ApplySingleFile(bundlePath, archivePath)
	}
	return selfupdate.ApplyDirectoryLayout(archivePath, opts.CurrentExePath, opts.BinaryName, opts.CurrentVersion)
}

// downloadToFile streams url into destPath with no overall request timeout,
// mirroring the snapshot downloader: update archives are small relative to
// chain snapshots but may still be fetched over a slow link, and a hash
// check follows immediately after, so failing fast on a stalled connection
// only matters at the dial/TLS stage.
func downloadToFile(ctx context.Context, url, destPath string, expectedSize int64, onProgress func(downloaded, total int64)) error {
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	client := &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 30 * time.Second,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindNetwork, "release.downloadToFile", "failed to build request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindNetwork, "release.downloadToFile", "download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orcherrors.New(orcherrors.KindNetwork, "release.downloadToFile", "unexpected HTTP status "+resp.Status)
	}

	total := expectedSize
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	out, err := os.Create(destPath)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "release.downloadToFile", "failed to create destination file", err)
	}
	defer out.Close()

	var downloaded int64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "release.downloadToFile", "failed to write downloaded bytes", err)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return orcherrors.Wrap(orcherrors.KindNetwork, "release.downloadToFile", "download interrupted", readErr)
		}
		select {
		case <-ctx.Done():
			return orcherrors.Wrap(orcherrors.KindTimeout, "release.downloadToFile", "download cancelled", ctx.Err())
		default:
		}
	}
}
