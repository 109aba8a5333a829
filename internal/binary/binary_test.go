package binary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor returns canned output for DetectVersion tests, avoiding a
// dependency on a real cardano-node/cardano-cli binary being on PATH.
type fakeExecutor struct {
	output []byte
	err    error
}

func (f *fakeExecutor) ExecuteWithTimeout(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return f.output, f.err
}

func TestDetectVersionParsesNodeOutput(t *testing.T) {
	restore := WithExecutor(&fakeExecutor{output: []byte("cardano-node 8.9.3 - linux-x86_64 - ghc-8.10\n")})
	defer restore()

	v, err := DetectVersion(context.Background(), "/irrelevant/path")
	require.NoError(t, err)
	assert.Equal(t, "8.9.3", v)
}

func TestDetectVersionRejectsUnrecognizedOutput(t *testing.T) {
	restore := WithExecutor(&fakeExecutor{output: []byte("not a version string")})
	defer restore()

	_, err := DetectVersion(context.Background(), "/irrelevant/path")
	require.Error(t, err)
	assert.True(t, orcherrors.Is(err, orcherrors.KindBinaryNotFound))
}

func TestFindAssetPrefersEarlierCandidate(t *testing.T) {
	rel := &Release{Assets: []ReleaseAsset{
		{Name: "cardano-node-8.9.3-linux-static.tar.gz"},
		{Name: "cardano-node-8.9.3-ubuntu-22.04-x86_64.tar.gz"},
	}}
	asset, ok := FindAsset(rel, []string{"ubuntu-22.04-x86_64", "linux-static"})
	require.True(t, ok)
	assert.Contains(t, asset.Name, "ubuntu-22.04")
}

func TestFindAssetNoMatch(t *testing.T) {
	rel := &Release{Assets: []ReleaseAsset{{Name: "cardano-node-8.9.3-windows.zip"}}}
	_, ok := FindAsset(rel, []string{"linux-x86_64"})
	assert.False(t, ok)
}

func TestCacheLookupMissing(t *testing.T) {
	c := NewCache(t.TempDir())
	_, err := c.Lookup(KindNode, "8.9.3")
	require.Error(t, err)
	assert.True(t, orcherrors.Is(err, orcherrors.KindBinaryNotFound))
}

func TestCacheStoreAndLookup(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "binaries"))

	tmp := filepath.Join(dir, "staged-binary")
	require.NoError(t, os.WriteFile(tmp, []byte("#!/bin/sh\necho hi\n"), 0o644))

	path, err := c.Store(KindNode, "8.9.3", tmp)
	require.NoError(t, err)

	found, err := c.Lookup(KindNode, "8.9.3")
	require.NoError(t, err)
	assert.Equal(t, path, found)

	info, err := os.Stat(found)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)
}

func TestWithinRejectsEscape(t *testing.T) {
	assert.True(t, within("/data/extracted", "/data/extracted/bin/cardano-node"))
	assert.False(t, within("/data/extracted", "/data/other"))
}

func TestExtractTarGzRejectsPathTraversal(t *testing.T) {
	// extractTarGz rejects escaping entries through within(); this checks
	// that guard directly rather than through a tar fixture.
	assert.False(t, within("/x", "/y/evil"))
}

func TestFindExecutablesFindsBothBinariesInOnePass(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "cardano-node-8.9.3", "bin")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "cardano-node"), []byte("node"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "cardano-cli"), []byte("cli"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "README"), []byte("docs"), 0o644))

	found, err := findExecutables(dir, []string{string(KindNode), string(KindCLI)})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, found[string(KindNode)], "cardano-node")
	assert.Contains(t, found[string(KindCLI)], "cardano-cli")
}

func TestFindExecutablesSkipsNonExecutableMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cardano-cli"), []byte("cli"), 0o644))

	found, err := findExecutables(dir, []string{string(KindCLI)})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestResolverCleanupKeepsOnlyPinnedVersions(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, "")

	for _, name := range []string{"cardano-node-8.9.2", "cardano-node-8.9.3", "cardano-cli-8.9.2", "cardano-cli-8.9.3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("bin"), 0o755))
	}

	require.NoError(t, r.Cleanup("8.9.3", "8.9.3"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"cardano-node-8.9.3", "cardano-cli-8.9.3"}, names)
}

func TestIsTarGz(t *testing.T) {
	assert.True(t, isTarGz("https://example.com/a.tar.gz"))
	assert.True(t, isTarGz("https://example.com/a.tgz"))
	assert.False(t, isTarGz("https://example.com/a"))
}
