package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// Client talks to a Mithril aggregator's HTTP API.
type Client struct {
	aggregatorURL string
	httpClient    *http.Client
	userAgent     string
}

// NewClient builds a Client against aggregatorURL. The aggregator
// connection uses a short, fixed timeout: its responses are small JSON
// documents, never a snapshot payload, so no separate "no timeout" variant
// is needed here (see Downloader for that).
func NewClient(aggregatorURL, userAgent string) *Client {
	return &Client{
		aggregatorURL: aggregatorURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		userAgent:     userAgent,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.aggregatorURL+path, nil)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindNetwork, "snapshot.Client", "failed to build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindNetwork, "snapshot.Client", "aggregator request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return orcherrors.New(orcherrors.KindNetwork, "snapshot.Client",
			fmt.Sprintf("aggregator returned %d for %s: %s", resp.StatusCode, path, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return orcherrors.Wrap(orcherrors.KindSerialization, "snapshot.Client", "failed to decode aggregator response", err)
	}
	return nil
}

// ListSnapshots fetches the published snapshot catalog.
func (c *Client) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	var snapshots []Snapshot
	if err := c.getJSON(ctx, "/artifact/snapshots", &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// LatestSnapshot returns the snapshot with the highest beacon epoch.
func (c *Client) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	snapshots, err := c.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, orcherrors.New(orcherrors.KindSnapshot, "snapshot.LatestSnapshot", "no snapshots available")
	}
	best := &snapshots[0]
	for i := range snapshots {
		if snapshots[i].Beacon.Epoch > best.Beacon.Epoch {
			best = &snapshots[i]
		}
	}
	return best, nil
}

// SnapshotByDigest fetches metadata for one specific snapshot.
func (c *Client) SnapshotByDigest(ctx context.Context, digest string) (*Snapshot, error) {
	var s Snapshot
	if err := c.getJSON(ctx, "/artifact/snapshot/"+digest, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Certificate fetches a single certificate by hash.
func (c *Client) Certificate(ctx context.Context, hash string) (*Certificate, error) {
	var cert Certificate
	if err := c.getJSON(ctx, "/certificate/"+hash, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}
