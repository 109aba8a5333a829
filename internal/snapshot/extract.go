package snapshot

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/klauspost/compress/zstd"
)

// Extract decompresses and untars archivePath into destDir, picking the
// decompressor from the archive's file extension. Mithril snapshots are
// published zstd-compressed; gzip and uncompressed tar are supported for
// mirrors and test fixtures.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.Extract", "failed to open archive", err)
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(archivePath, ".tar.zst"), strings.HasSuffix(archivePath, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "snapshot.Extract", "archive is not zstd-compressed", err)
		}
		defer zr.Close()
		reader = zr
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "snapshot.Extract", "archive is not gzip-compressed", err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(archivePath, ".tar.lz4"), strings.HasSuffix(archivePath, ".lz4"):
		return extractViaLZ4CLI(archivePath, destDir)
	}

	return untar(reader, destDir)
}

// extractViaLZ4CLI shells out to the lz4 command, since no pure-Go lz4
// decoder is part of this module's dependency set. This mirrors how the
// node's own release tooling expects lz4 to be available on the host.
func extractViaLZ4CLI(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.Extract", "failed to create destination directory", err)
	}
	cmd := exec.Command("sh", "-c", "lz4 -d -c "+shellQuote(archivePath)+" | tar xf - -C "+shellQuote(destDir))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.Extract", "lz4 extraction failed: "+string(out), err)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func untar(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "failed to create destination directory", err)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "corrupt tar stream", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		rel, err := filepath.Rel(destDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return orcherrors.New(orcherrors.KindIO, "snapshot.untar", "archive entry escapes destination: "+hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "failed to create parent directory", err)
			}
			mode := os.FileMode(hdr.Mode) & 0o777
			if mode == 0 {
				mode = 0o644
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
			if err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "failed to create file", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return orcherrors.Wrap(orcherrors.KindIO, "snapshot.untar", "failed to write extracted file", err)
			}
			out.Close()
		}
	}
}
