package binary

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/klauspost/compress/gzip"
)

// extractTarGz streams archivePath into destDir, preserving the executable
// bit on regular files and refusing to write outside destDir.
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "failed to open archive", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "archive is not gzip-compressed", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "corrupt tar stream", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !within(destDir, target) {
			return orcherrors.New(orcherrors.KindIO, "binary.extractTarGz", "archive entry escapes destination: "+hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "failed to create parent directory", err)
			}
			mode := os.FileMode(hdr.Mode) & 0o777
			if mode == 0 {
				mode = 0o644
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
			if err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "failed to create file", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return orcherrors.Wrap(orcherrors.KindIO, "binary.extractTarGz", "failed to write extracted file", err)
			}
			out.Close()
		}
	}
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// findExecutable walks dir depth-first looking for a regular, executable
// file named name, since release tarballs vary in how deeply they nest the
// binary (some ship it at the root, others under a versioned subdirectory).
func findExecutable(dir, name string) (string, error) {
	found, err := findExecutables(dir, []string{name})
	if err != nil {
		return "", err
	}
	path, ok := found[name]
	if !ok {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.findExecutable", "executable "+name+" not found in archive")
	}
	return path, nil
}

// findExecutables walks dir once, depth-first, collecting the path of every
// regular, executable file whose name matches one of names. cardano-node
// release tarballs ship both cardano-node and cardano-cli side by side, so
// the resolver extracts both executables from a single download rather than
// fetching the archive twice.
func findExecutables(dir string, names []string) (map[string]string, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	found := make(map[string]string, len(names))
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if len(found) == len(want) {
			return filepath.SkipAll
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := found[info.Name()]; ok {
			return nil
		}
		if !want[info.Name()] {
			return nil
		}
		if info.Mode()&0o111 == 0 {
			return nil
		}
		found[info.Name()] = path
		return nil
	})
	if err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindIO, "binary.findExecutables", "failed walking extracted archive", err)
	}
	return found, nil
}
