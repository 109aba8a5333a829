package binary

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/platform"
)

// Resolver resolves cardano-node and cardano-cli to a local, validated,
// executable path, downloading and caching a release asset on first use.
type Resolver struct {
	catalog *Catalog
	cache   *Cache
	stage   string // scratch directory for in-flight downloads/extraction
}

// NewResolver builds a Resolver. binariesDir is the cache root
// (Configuration.Paths().Binaries); githubToken may be empty.
func NewResolver(binariesDir, githubToken string) *Resolver {
	return &Resolver{
		catalog: NewCatalog(githubToken),
		cache:   NewCache(binariesDir),
		stage:   filepath.Join(binariesDir, ".staging"),
	}
}

// ResolveNode returns a validated cardano-node binary path for the current
// host, preferring a pinned version if requestedVersion is non-empty and
// otherwise resolving the latest published release. The release catalog is
// always queried to learn the version; a cache hit for that version skips
// the asset download.
func (r *Resolver) ResolveNode(ctx context.Context, profile *platform.Profile, requestedVersion string) (string, string, error) {
	var release *Release
	var err error

	if requestedVersion != "" {
		release, err = r.catalog.ReleaseByTag(ctx, requestedVersion)
	} else {
		release, err = r.catalog.LatestRelease(ctx)
	}
	if err != nil {
		return "", "", err
	}
	version := strings.TrimPrefix(release.Tag, "v")

	if path, err := r.cache.Lookup(KindNode, version); err == nil {
		return path, version, nil
	}

	candidates := profile.AssetNameCandidates(version)
	asset, ok := FindAsset(release, candidates)
	if !ok {
		return "", "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.ResolveNode",
			"no compatible cardano-node asset for "+profile.Distro+" "+profile.DistroVersion+" "+profile.Arch)
	}

	path, err := r.fetchAndCache(ctx, KindNode, version, asset.DownloadURL)
	if err != nil {
		return "", "", err
	}

	if _, err := DetectVersion(ctx, path); err != nil {
		return "", "", err
	}
	return path, version, nil
}

// ResolveCLI returns a cached cardano-cli path. Per the precondition that
// the CLI always tracks whatever node was most recently resolved, this
// never hits the network: it is an error to call ResolveCLI before a
// successful ResolveNode.
func (r *Resolver) ResolveCLI(ctx context.Context) (string, error) {
	path, err := r.cache.LatestCLI()
	if err != nil {
		return "", err
	}
	if _, err := DetectVersion(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// fetchAndCache downloads the asset at url and installs it into the cache.
// A tar.gz asset typically bundles both cardano-node and cardano-cli side
// by side; both are extracted and cached in one pass so a later
// ResolveCLI call for the same version never needs a second download. The
// path for kind is returned; the sibling executable, if present, is cached
// as a side effect.
func (r *Resolver) fetchAndCache(ctx context.Context, kind Kind, version, url string) (string, error) {
	stageDir, err := os.MkdirTemp(r.stage, string(kind)+"-*")
	if err != nil {
		if mkErr := os.MkdirAll(r.stage, 0o755); mkErr != nil {
			return "", orcherrors.Wrap(orcherrors.KindIO, "binary.fetchAndCache", "failed to create staging root", mkErr)
		}
		stageDir, err = os.MkdirTemp(r.stage, string(kind)+"-*")
		if err != nil {
			return "", orcherrors.Wrap(orcherrors.KindIO, "binary.fetchAndCache", "failed to create staging directory", err)
		}
	}
	defer os.RemoveAll(stageDir)

	if err := downloadAsset(ctx, url, stageDir); err != nil {
		return "", err
	}

	archivePath := filepath.Join(stageDir, "asset")
	extractDir := filepath.Join(stageDir, "extracted")
	if !isTarGz(url) {
		// Some release assets are bare executables, not archives.
		extractDir = stageDir
		if err := os.Rename(archivePath, filepath.Join(extractDir, string(kind))); err != nil {
			return "", orcherrors.Wrap(orcherrors.KindIO, "binary.fetchAndCache", "failed to stage bare executable", err)
		}
		found, err := findExecutable(extractDir, string(kind))
		if err != nil {
			return "", err
		}
		return r.cache.Store(kind, version, found)
	}

	if err := extractTarGz(archivePath, extractDir); err != nil {
		return "", err
	}

	found, err := findExecutables(extractDir, []string{string(KindNode), string(KindCLI)})
	if err != nil {
		return "", err
	}
	if _, ok := found[string(kind)]; !ok {
		return "", orcherrors.New(orcherrors.KindBinaryNotFound, "binary.fetchAndCache", "executable "+string(kind)+" not found in archive")
	}

	var resultPath string
	for name, path := range found {
		stored, err := r.cache.Store(Kind(name), version, path)
		if err != nil {
			return "", err
		}
		if name == string(kind) {
			resultPath = stored
		}
	}
	return resultPath, nil
}

func isTarGz(url string) bool {
	return strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz")
}

// Cleanup removes cached binaries other than the ones currently pinned by
// keepNode/keepCLI versions, reclaiming disk space after an update.
func (r *Resolver) Cleanup(keepNodeVersion, keepCLIVersion string) error {
	entries, err := os.ReadDir(r.cache.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return orcherrors.Wrap(orcherrors.KindIO, "binary.Cleanup", "failed to list binaries directory", err)
	}
	keepNode := string(KindNode) + "-" + keepNodeVersion
	keepCLI := string(KindCLI) + "-" + keepCLIVersion
	for _, e := range entries {
		if e.Name() == keepNode || e.Name() == keepCLI || e.Name() == ".staging" {
			continue
		}
		_ = os.RemoveAll(filepath.Join(r.cache.dir, e.Name()))
	}
	return nil
}
