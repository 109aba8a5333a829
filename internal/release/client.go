package release

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// Client checks for and fetches update manifests.
type Client struct {
	manifestURL string
	mirrors     []string
	httpClient  *http.Client
	userAgent   string
}

// NewClient builds a Client against a primary manifest URL with fallback
// mirrors, tried in order if the primary is unreachable.
func NewClient(manifestURL string, mirrors []string, userAgent string) *Client {
	return &Client{
		manifestURL: manifestURL,
		mirrors:     mirrors,
		httpClient:  &http.Client{},
		userAgent:   userAgent,
	}
}

// AvailableUpdate describes an update check's positive result.
type AvailableUpdate struct {
	Manifest   *Manifest
	IsNewer    bool
	BelowFloor bool // current version is below Manifest.MinVersion
}

// Check fetches the manifest and compares it against the currently
// running version, returning nil (no update) if the manifest version is
// not newer.
func (c *Client) Check(ctx context.Context, currentVersion string) (*AvailableUpdate, error) {
	manifest, err := c.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}

	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindConfig, "release.Check", "running version is not valid semver", err)
	}
	latest, err := semver.NewVersion(manifest.Version)
	if err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindSerialization, "release.Check", "manifest version is not valid semver", err)
	}

	result := &AvailableUpdate{Manifest: manifest, IsNewer: latest.GreaterThan(current)}

	if manifest.MinVersion != "" {
		floor, err := semver.NewVersion(manifest.MinVersion)
		if err == nil && current.LessThan(floor) {
			result.BelowFloor = true
		}
	}

	if !result.IsNewer {
		return nil, nil
	}
	return result, nil
}

func (c *Client) fetchManifest(ctx context.Context) (*Manifest, error) {
	urls := append([]string{c.manifestURL}, c.mirrors...)
	var lastErr error
	for _, url := range urls {
		manifest, err := c.fetchManifestFrom(ctx, url)
		if err == nil {
			return manifest, nil
		}
		lastErr = err
	}
	return nil, orcherrors.Wrap(orcherrors.KindNetwork, "release.fetchManifest", "all manifest sources failed", lastErr)
}

func (c *Client) fetchManifestFrom(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, orcherrors.New(orcherrors.KindNetwork, "release.fetchManifestFrom", "manifest fetch returned "+resp.Status+": "+string(body))
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindSerialization, "release.fetchManifestFrom", "failed to decode manifest", err)
	}
	return &m, nil
}

// PlatformKey returns the manifest download-map key for the current host,
// e.g. "linux_x86_64".
func PlatformKey() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	return runtime.GOOS + "_" + arch
}
