package snapshot

import (
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"golang.org/x/sys/unix"
)

// CheckDiskSpace verifies at least requiredBytes are free on the
// filesystem containing dir, returning orcherrors.KindInsufficientDiskSpace
// if not.
func CheckDiskSpace(dir string, requiredBytes uint64) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.CheckDiskSpace", "failed to statfs data directory", err)
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < requiredBytes {
		return orcherrors.InsufficientDiskSpace("snapshot.CheckDiskSpace", requiredBytes/(1024*1024), available/(1024*1024))
	}
	return nil
}

// PrepareDBDirectory ensures dbPath exists and is empty, moving aside any
// existing contents to dbPath's sibling db.backup directory so a failed
// bootstrap never destroys a previously synced chain.
func PrepareDBDirectory(dbPath, backupPath string) error {
	entries, err := os.ReadDir(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dbPath, 0o755)
		}
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.PrepareDBDirectory", "failed to read db directory", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if _, err := os.Stat(backupPath); err == nil {
		if err := os.RemoveAll(backupPath); err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "snapshot.PrepareDBDirectory", "failed to clear stale db.backup", err)
		}
	}
	if err := os.Rename(dbPath, backupPath); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.PrepareDBDirectory", "failed to move db aside to db.backup", err)
	}
	return os.MkdirAll(dbPath, 0o755)
}

// FlattenIfNested corrects the common case of a snapshot archive
// containing a single wrapping directory instead of immutable/ directly at
// its root, by hoisting that directory's contents up one level.
func FlattenIfNested(dbPath string) error {
	if _, err := os.Stat(filepath.Join(dbPath, "immutable")); err == nil {
		return nil // already flat
	}

	entries, err := os.ReadDir(dbPath)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.FlattenIfNested", "failed to read db directory", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	nested := filepath.Join(dbPath, entries[0].Name())
	if _, err := os.Stat(filepath.Join(nested, "immutable")); err != nil {
		return nil // nested dir doesn't look like a db root either; leave it for validation to reject
	}

	nestedEntries, err := os.ReadDir(nested)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "snapshot.FlattenIfNested", "failed to read nested directory", err)
	}
	for _, e := range nestedEntries {
		if err := os.Rename(filepath.Join(nested, e.Name()), filepath.Join(dbPath, e.Name())); err != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "snapshot.FlattenIfNested", "failed to hoist nested entry", err)
		}
	}
	return os.Remove(nested)
}

// ValidateExtractedDB checks that dbPath contains an immutable/ directory
// with at least one chunk/primary/secondary file, the structural signal
// that extraction actually produced usable chain data.
func ValidateExtractedDB(dbPath string) error {
	immutable := filepath.Join(dbPath, "immutable")
	entries, err := os.ReadDir(immutable)
	if err != nil {
		return orcherrors.New(orcherrors.KindSnapshot, "snapshot.ValidateExtractedDB", "missing immutable directory after extraction")
	}

	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if ext == ".chunk" || ext == ".primary" || ext == ".secondary" {
			return nil
		}
	}
	return orcherrors.New(orcherrors.KindSnapshot, "snapshot.ValidateExtractedDB", "no immutable chain files found after extraction")
}
