// Package selfupdate performs the final step of a release update: swapping
// a verified new binary into place, either as a single file or as the
// primary executable of a directory-layout bundle.
package selfupdate

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// auxiliaryExecutables lists sibling binaries that ship alongside the
// primary orchestrator executable in a directory-layout bundle and must be
// kept in lockstep with it.
var auxiliaryExecutables = []string{"cardano-node", "cardano-cli"}

// BundleEnvVar, when set, names the path to the currently running
// single-file bundle. Its presence selects single-file swap mode over
// directory-layout swap.
const BundleEnvVar = "ORCHESTRATOR_BUNDLE_PATH"

// Mode reports which swap strategy applies to the current install.
func Mode() (bundlePath string, isSingleFile bool) {
	if p := os.Getenv(BundleEnvVar); p != "" {
		return p, true
	}
	return "", false
}

// ApplySingleFile backs up currentPath, then overwrites it with
// newFilePath, preserving the executable bit.
func ApplySingleFile(currentPath, newFilePath string) error {
	backupPath := currentPath + ".backup"
	if err := copyFile(currentPath, backupPath); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplySingleFile", "failed to back up current binary", err)
	}
	if err := copyFile(newFilePath, currentPath); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplySingleFile", "failed to install new binary", err)
	}
	if err := os.Chmod(currentPath, 0o755); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplySingleFile", "failed to set executable bit", err)
	}
	return nil
}

// candidateNames are the ordered locations Primary executables are looked
// for within an extracted directory-layout bundle, before falling back to
// a depth-first recursive search.
func candidateNames(binaryName, currentVersion string) []string {
	return []string{
		binaryName,
		filepath.Join("bin", binaryName),
		filepath.Join("usr", "bin", binaryName),
		filepath.Join(binaryName+"-"+currentVersion, "bin", binaryName),
	}
}

// ApplyDirectoryLayout extracts archivePath (gzip-tar) into a scratch
// directory, locates the new primary executable, backs up currentExePath
// and replaces it by rename (by copy when the scratch directory is on
// another filesystem), then replaces any auxiliary executables found
// both in the archive and adjacent to currentExePath.
func ApplyDirectoryLayout(archivePath, currentExePath, binaryName, currentVersion string) error {
	scratch, err := os.MkdirTemp("", "orchestrator-update-*")
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplyDirectoryLayout", "failed to create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	if err := extractTarGz(archivePath, scratch); err != nil {
		return err
	}

	newExePath, err := locatePrimary(scratch, binaryName, currentVersion)
	if err != nil {
		return err
	}

	backupPath := currentExePath + ".backup"
	if err := copyFile(currentExePath, backupPath); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplyDirectoryLayout", "failed to back up current executable", err)
	}
	if err := os.Chmod(newExePath, 0o755); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplyDirectoryLayout", "failed to set executable bit on new binary", err)
	}
	if err := renameAcrossFilesystems(newExePath, currentExePath); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplyDirectoryLayout", "failed to swap in new executable", err)
	}

	currentDir := filepath.Dir(currentExePath)
	for _, aux := range auxiliaryExecutables {
		archiveCopy, err := findByName(scratch, aux)
		if err != nil {
			continue // not present in this bundle
		}
		adjacentPath := filepath.Join(currentDir, aux)
		if _, err := os.Stat(adjacentPath); err != nil {
			continue // no existing sibling to keep in sync
		}
		if err := copyFile(archiveCopy, adjacentPath); err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.ApplyDirectoryLayout", "failed to replace sibling executable "+aux, err)
		}
		_ = os.Chmod(adjacentPath, 0o755)
	}

	return nil
}

func locatePrimary(root, binaryName, currentVersion string) (string, error) {
	for _, candidate := range candidateNames(binaryName, currentVersion) {
		path := filepath.Join(root, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return findByName(root, binaryName)
}

func findByName(root, name string) (string, error) {
	var found string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if found != "" {
			return filepath.SkipDir
		}
		if !info.IsDir() && info.Name() == name {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "selfupdate.findByName", "failed walking extracted bundle", err)
	}
	if found == "" {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "selfupdate.findByName", "executable "+name+" not found in update bundle")
	}
	return found, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// renameAcrossFilesystems performs an os.Rename, falling back to copy-then-
// remove when the scratch directory and destination are on different
// filesystems (os.Rename returns EXDEV in that case).
func renameAcrossFilesystems(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "failed to open update archive", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "update archive is not gzip-compressed", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "corrupt update archive", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		rel, err := filepath.Rel(destDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return orcherrors.New(orcherrors.KindIO, "selfupdate.extractTarGz", "archive entry escapes destination: "+hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "failed to create parent directory", err)
			}
			mode := os.FileMode(hdr.Mode) & 0o777
			if mode == 0 {
				mode = 0o644
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
			if err != nil {
				return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "failed to create file", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return orcherrors.Wrap(orcherrors.KindIO, "selfupdate.extractTarGz", "failed to write extracted file", err)
			}
			out.Close()
		}
	}
}
