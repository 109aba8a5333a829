package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// ProgressFunc is invoked periodically during a streaming download with
// bytes transferred so far and the expected total (0 if unknown).
type ProgressFunc func(downloaded, total int64)

// Downloader streams snapshot archives, which can run for hours on a
// cold sync, so — unlike Client — it deliberately builds an http.Client
// with no overall request timeout. Only the dial/TLS handshake legs of
// the transport are bounded; the body read itself is governed solely by
// context cancellation.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
}

// NewDownloader builds a Downloader with no overall request timeout. Only
// the connection setup (dial, TLS handshake) is bounded; the body read is
// governed solely by the caller's context, since snapshot transfers can
// legitimately run for hours.
func NewDownloader(userAgent string) *Downloader {
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 0,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 30 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Download streams url into destPath, invoking onProgress after every
// chunk. It returns the SHA-256 hex digest of the bytes written.
func (d *Downloader) Download(ctx context.Context, url, destPath string, expectedSize int64, onProgress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindNetwork, "snapshot.Download", "failed to build request", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindNetwork, "snapshot.Download", "download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", orcherrors.New(orcherrors.KindNetwork, "snapshot.Download", "unexpected HTTP status "+resp.Status)
	}

	total := expectedSize
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "snapshot.Download", "failed to create destination file", err)
	}
	defer out.Close()

	hasher := sha256.New()
	var downloaded int64
	buf := make([]byte, 256*1024)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return "", orcherrors.Wrap(orcherrors.KindIO, "snapshot.Download", "failed to write downloaded bytes", err)
			}
			hasher.Write(buf[:n])
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", orcherrors.Wrap(orcherrors.KindNetwork, "snapshot.Download", "download interrupted", readErr)
		}
		select {
		case <-ctx.Done():
			return "", orcherrors.Wrap(orcherrors.KindTimeout, "snapshot.Download", "download cancelled", ctx.Err())
		default:
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyDigest compares a downloaded file's SHA-256 hash against the
// snapshot's opaque digest string. Mithril digests are not guaranteed to
// be raw SHA-256 hex, so this is a best-effort prefix comparison: a
// mismatch is logged as a warning by the caller, never treated as fatal,
// since the certificate chain is the real trust anchor.
func VerifyDigest(actualSHA256Hex, expectedDigest string) (matched bool) {
	if len(actualSHA256Hex) < 16 || len(expectedDigest) < 16 {
		return false
	}
	return strings.HasPrefix(expectedDigest, actualSHA256Hex[:16])
}
