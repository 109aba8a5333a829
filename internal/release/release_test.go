package release

import (
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFileAndVerifySignatureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/artifact.bin"
	require.NoError(t, os.WriteFile(path, []byte("cardano-orchestrator release bytes"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)

	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)

	sig, err := SignHash(priv, hash)
	require.NoError(t, err)

	assert.NoError(t, VerifySignature(pub, hash, sig))
}

func TestVerifySignatureRejectsTamperedHash(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/artifact.bin"
	require.NoError(t, os.WriteFile(path, []byte("original content"), 0o644))
	hash, err := HashFile(path)
	require.NoError(t, err)

	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)
	sig, err := SignHash(priv, hash)
	require.NoError(t, err)

	tampered := hash
	tampered[0] ^= 0xFF
	assert.Error(t, VerifySignature(pub, tampered, sig))
}

func TestVerifySignatureRejectsSiblingKeypair(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/artifact.bin"
	require.NoError(t, os.WriteFile(path, []byte("original content"), 0o644))
	hash, err := HashFile(path)
	require.NoError(t, err)

	_, priv, err := GenerateKeypair()
	require.NoError(t, err)
	sig, err := SignHash(priv, hash)
	require.NoError(t, err)

	siblingPub, _, err := GenerateKeypair()
	require.NoError(t, err)

	assert.Error(t, VerifySignature(siblingPub, hash, sig))
}

func TestVerifySignatureRejectsMalformedKeyOrSig(t *testing.T) {
	var hash [32]byte
	assert.Error(t, VerifySignature("not-hex", hash, hex.EncodeToString(make([]byte, 64))))
	assert.Error(t, VerifySignature(hex.EncodeToString(make([]byte, 32)), hash, "not-hex"))
	assert.Error(t, VerifySignature(hex.EncodeToString(make([]byte, 32)), hash, hex.EncodeToString(make([]byte, 10))))
}

func TestManifestDownloadURLFor(t *testing.T) {
	m := &Manifest{Downloads: map[string]string{"linux_x86_64": "https://example.test/update.tar.gz"}}
	url, ok := m.DownloadURLFor("linux_x86_64")
	assert.True(t, ok)
	assert.Equal(t, "https://example.test/update.tar.gz", url)

	_, ok = m.DownloadURLFor("darwin_arm64")
	assert.False(t, ok)
}

func TestPlatformKeyFormat(t *testing.T) {
	key := PlatformKey()
	assert.Contains(t, key, "_")
}
