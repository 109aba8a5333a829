package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCert(opts ...func(*Certificate)) *Certificate {
	c := &Certificate{
		Hash:                     "abc123",
		PreviousHash:             "",
		Epoch:                    0,
		Metadata:                 CertificateMetadata{Signers: []Signer{{PartyID: "p1", Stake: 100}}},
		SignedMessage:            "ab" + stringRepeat("cd", 32),
		ProtocolMessage:          json.RawMessage(`{"message_parts":{"a":"b"}}`),
		GenesisSignature:         "ab" + stringRepeat("cd", 32),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func stringRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestValidateCertificateStructureGenesisOK(t *testing.T) {
	cert := validCert()
	assert.NoError(t, validateCertificateStructure(cert))
}

func TestValidateCertificateStructureRejectsNoSigners(t *testing.T) {
	cert := validCert(func(c *Certificate) { c.Metadata.Signers = nil })
	err := validateCertificateStructure(cert)
	require.Error(t, err)
	assert.True(t, orcherrors.Is(err, orcherrors.KindCertificateInvalid))
}

func TestValidateCertificateStructureRejectsZeroStake(t *testing.T) {
	cert := validCert(func(c *Certificate) { c.Metadata.Signers = []Signer{{PartyID: "p1", Stake: 0}} })
	assert.Error(t, validateCertificateStructure(cert))
}

func TestValidateCertificateStructureRejectsMissingSignature(t *testing.T) {
	cert := validCert(func(c *Certificate) {
		c.GenesisSignature = ""
		c.MultiSignature = nil
	})
	assert.Error(t, validateCertificateStructure(cert))
}

func TestValidateCertificateStructureNonGenesisRequiresAVK(t *testing.T) {
	cert := validCert(func(c *Certificate) {
		c.Epoch = 5
		c.GenesisSignature = ""
		c.MultiSignature = json.RawMessage(`"` + stringRepeat("ab", 32) + `"`)
		c.AggregateVerificationKey = ""
	})
	assert.Error(t, validateCertificateStructure(cert))
}

func TestValidateCertificateStructureNonGenesisAcceptsObjectSignature(t *testing.T) {
	cert := validCert(func(c *Certificate) {
		c.Epoch = 5
		c.GenesisSignature = ""
		c.MultiSignature = json.RawMessage(`{"sigma":"xyz","indexes":[1,2]}`)
		c.AggregateVerificationKey = stringRepeat("ab", 32)
	})
	assert.NoError(t, validateCertificateStructure(cert))
}

func TestValidateCertificateStructureAcceptsThinSignerSet(t *testing.T) {
	// Fewer than 3 signers is a warning at the VerifyCertificateChain
	// level, never a structural failure on its own.
	cert := validCert(func(c *Certificate) { c.Metadata.Signers = []Signer{{PartyID: "p1", Stake: 100}} })
	assert.NoError(t, validateCertificateStructure(cert))
}

func TestVerifyDigestPrefixMatch(t *testing.T) {
	assert.True(t, VerifyDigest("abcdef0123456789deadbeef", "abcdef0123456789"))
	assert.False(t, VerifyDigest("abcdef0123456789deadbeef", "11111111deadbeef"))
	assert.False(t, VerifyDigest("short", "alsoshort"))
}

func TestArchiveSuffix(t *testing.T) {
	assert.Equal(t, ".tar.zst", archiveSuffix("https://example.com/snap.tar.zst"))
	assert.Equal(t, ".tar.gz", archiveSuffix("https://example.com/snap.tar.gz"))
	assert.Equal(t, ".tar.lz4", archiveSuffix("https://example.com/snap.tar.lz4"))
	assert.Equal(t, ".tar.zst", archiveSuffix("https://example.com/snap.unknown"))
}

func TestPrepareDBDirectoryMovesExistingDataAside(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	backup := filepath.Join(dir, "db.backup")
	require.NoError(t, os.MkdirAll(filepath.Join(db, "immutable"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(db, "immutable", "00000.chunk"), []byte("x"), 0o644))

	require.NoError(t, PrepareDBDirectory(db, backup))

	_, err := os.Stat(filepath.Join(backup, "immutable", "00000.chunk"))
	assert.NoError(t, err)
	entries, err := os.ReadDir(db)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrepareDBDirectoryCreatesWhenMissing(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	require.NoError(t, PrepareDBDirectory(db, filepath.Join(dir, "db.backup")))
	info, err := os.Stat(db)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFlattenIfNestedHoistsSingleWrapper(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	nested := filepath.Join(db, "mainnet-snapshot")
	require.NoError(t, os.MkdirAll(filepath.Join(nested, "immutable"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "immutable", "00000.chunk"), []byte("x"), 0o644))

	require.NoError(t, FlattenIfNested(db))

	_, err := os.Stat(filepath.Join(db, "immutable", "00000.chunk"))
	assert.NoError(t, err)
}

func TestValidateExtractedDBRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "immutable"), 0o755))
	err := ValidateExtractedDB(dir)
	assert.Error(t, err)
}

func TestValidateExtractedDBAcceptsChunkFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "immutable"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "immutable", "00000.chunk"), []byte("x"), 0o644))
	assert.NoError(t, ValidateExtractedDB(dir))
}

func TestSnapshotEpoch(t *testing.T) {
	s := &Snapshot{Beacon: Beacon{Epoch: 500}}
	assert.Equal(t, 500, s.Epoch())
}
