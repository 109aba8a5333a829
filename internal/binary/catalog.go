// Package binary resolves, downloads, caches and validates the
// cardano-node and cardano-cli executables for the host platform, against
// the IntersectMBO/cardano-node GitHub release catalog.
package binary

import (
	"context"
	"fmt"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/google/go-github/v78/github"
)

const (
	catalogOwner = "IntersectMBO"
	catalogRepo  = "cardano-node"
)

// ReleaseAsset is the subset of a GitHub release asset the resolver needs.
type ReleaseAsset struct {
	Name        string
	DownloadURL string
	Size        int64
}

// Release is the subset of a GitHub release the resolver needs.
type Release struct {
	Tag    string
	Assets []ReleaseAsset
}

// Catalog fetches the published release matrix from GitHub.
type Catalog struct {
	client *github.Client
	owner  string
	repo   string
}

// NewCatalog builds a Catalog client, optionally authenticated with a
// personal access token to raise the unauthenticated rate limit.
func NewCatalog(token string) *Catalog {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Catalog{client: client, owner: catalogOwner, repo: catalogRepo}
}

// LatestRelease fetches the most recent non-draft, non-prerelease release.
func (c *Catalog) LatestRelease(ctx context.Context) (*Release, error) {
	rel, _, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindNetwork, "binary.LatestRelease", "failed to fetch latest release", err)
	}
	return toRelease(rel), nil
}

// ReleaseByTag fetches a specific tagged release, used when a
// Configuration pins an exact node version.
func (c *Catalog) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	rel, _, err := c.client.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		return nil, orcherrors.Wrap(orcherrors.KindNetwork, "binary.ReleaseByTag", fmt.Sprintf("failed to fetch release %s", tag), err)
	}
	return toRelease(rel), nil
}

func toRelease(rel *github.RepositoryRelease) *Release {
	out := &Release{Tag: rel.GetTagName()}
	for _, a := range rel.Assets {
		out.Assets = append(out.Assets, ReleaseAsset{
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
			Size:        int64(a.GetSize()),
		})
	}
	return out
}

// FindAsset returns the first asset whose name contains one of candidates,
// trying candidates in order (most specific first).
func FindAsset(rel *Release, candidates []string) (*ReleaseAsset, bool) {
	for _, candidate := range candidates {
		for i := range rel.Assets {
			if strings.Contains(rel.Assets[i].Name, candidate) {
				return &rel.Assets[i], true
			}
		}
	}
	return nil, false
}
