package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfigURL temporarily overrides the registered ConfigURL for net,
// restoring the original defaults entry when the test finishes. The
// defaults table is package-level state shared across tests, so tests
// that mutate it must not run with t.Parallel.
func withConfigURL(t *testing.T, net Network, url string) {
	t.Helper()
	original := defaultsByNetwork[net]
	patched := original
	patched.ConfigURL = url
	defaultsByNetwork[net] = patched
	t.Cleanup(func() { defaultsByNetwork[net] = original })
}

func TestEnsureNetworkConfigDownloadsWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Protocol":"Cardano"}`))
	}))
	defer srv.Close()
	withConfigURL(t, NetworkMainnet, srv.URL)

	cfg := Defaults(NetworkMainnet, t.TempDir())

	path, err := EnsureNetworkConfig(context.Background(), cfg, "test-agent")
	require.NoError(t, err)
	assert.Equal(t, cfg.Paths().NetworkConfig, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cardano")
}

func TestEnsureNetworkConfigDoesNotOverwriteExisting(t *testing.T) {
	cfg := Defaults(NetworkTestnetA, t.TempDir())
	path := cfg.Paths().NetworkConfig
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("operator-supplied"), 0o644))

	got, err := EnsureNetworkConfig(context.Background(), cfg, "test-agent")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "operator-supplied", string(data))
}

func TestEnsureNetworkConfigFailsWithoutRegisteredURL(t *testing.T) {
	withConfigURL(t, NetworkTestnetB, "")

	cfg := Defaults(NetworkTestnetB, t.TempDir())
	_, err := EnsureNetworkConfig(context.Background(), cfg, "test-agent")
	assert.Error(t, err)
}
