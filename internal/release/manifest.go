// Package release implements the self-updater: fetching a signed version
// manifest, verifying its Ed25519 signature and the new binary's hash, and
// atomically swapping it into place.
package release

// Manifest is the JSON document published alongside each release,
// describing the latest version, its expected hash, and the Ed25519
// signature over that hash.
type Manifest struct {
	Version      string            `json:"version"`
	SHA256       string            `json:"sha256"`
	Signature    string            `json:"signature"`
	MinVersion   string            `json:"min_version,omitempty"`
	ReleaseNotes string            `json:"release_notes,omitempty"`
	ReleasedAt   string            `json:"released_at"`
	Downloads    map[string]string `json:"downloads"`
	Size         int64             `json:"size"`
}

// DownloadURLFor returns the manifest's download URL for the given
// platform key ("linux_x86_64", "linux_aarch64", ...).
func (m *Manifest) DownloadURLFor(platformKey string) (string, bool) {
	url, ok := m.Downloads[platformKey]
	return url, ok
}
