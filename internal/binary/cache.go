package binary

import (
	"os"
	"path/filepath"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// Kind distinguishes the two executables the resolver manages. cardano-cli
// is only ever resolved after a matching cardano-node has already been
// cached, since its version must track the node's.
type Kind string

const (
	KindNode Kind = "cardano-node"
	KindCLI  Kind = "cardano-cli"
)

// Cache locates cached binaries under binariesDir, named
// "{kind}-{version}" per the on-disk layout.
type Cache struct {
	dir string
}

// NewCache wraps a binaries directory (Configuration.Paths().Binaries).
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the expected on-disk path for kind at version, whether or
// not it currently exists.
func (c *Cache) Path(kind Kind, version string) string {
	return filepath.Join(c.dir, string(kind)+"-"+version)
}

// Lookup returns the cached path for kind at version if it exists and is
// executable, or orcherrors.KindBinaryNotFound otherwise.
func (c *Cache) Lookup(kind Kind, version string) (string, error) {
	path := c.Path(kind, version)
	info, err := os.Stat(path)
	if err != nil {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.Lookup", "not cached: "+path)
	}
	if info.IsDir() {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.Lookup", "cache entry is a directory: "+path)
	}
	if info.Mode()&0o111 == 0 {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.Lookup", "cached file is not executable: "+path)
	}
	return path, nil
}

// LatestCLI scans the cache directory for the newest cached cardano-cli by
// file modification time, since CLI resolution has no independent version input
// of its own — it always tracks whatever node was most recently resolved.
func (c *Cache) LatestCLI() (string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return "", orcherrors.Wrap(orcherrors.KindBinaryNotFound, "binary.LatestCLI", "binaries directory unreadable", err)
	}

	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) < len(KindCLI)+1 {
			continue
		}
		if e.Name()[:len(KindCLI)] != string(KindCLI) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Unix() > bestMod {
			bestMod = info.ModTime().Unix()
			best = filepath.Join(c.dir, e.Name())
		}
	}
	if best == "" {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.LatestCLI", "no cardano-cli cached; resolve a node first")
	}
	return best, nil
}

// Store moves a freshly-extracted executable at tmpPath into the cache
// under its canonical name, via rename for atomicity within the same
// filesystem.
func (c *Cache) Store(kind Kind, version, tmpPath string) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "binary.Store", "failed to create binaries directory", err)
	}
	dest := c.Path(kind, version)
	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "binary.Store", "failed to set executable bit", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", orcherrors.Wrap(orcherrors.KindIO, "binary.Store", "failed to install binary into cache", err)
	}
	return dest, nil
}
