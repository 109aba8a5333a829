package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsMainnetHasNoTestnetMagic(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkMainnet, dir)
	args := BuildArgs(cfg, filepath.Join(dir, "config", "mainnet-config.json"))
	assert.Contains(t, args, "run")
	assert.Contains(t, args, "--topology")
	assert.NotContains(t, args, "--testnet-magic")
}

func TestBuildArgsTestnetIncludesMagic(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkTestnetA, dir)
	args := BuildArgs(cfg, filepath.Join(dir, "config", "testnet-a-config.json"))
	assert.Contains(t, args, "--testnet-magic")
	idx := indexOfStr(args, "--testnet-magic")
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "2", args[idx+1])
}

func TestBuildArgsAppendsExtraArgsVerbatimAtEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkMainnet, dir)
	cfg.Node.ExtraArgs = []string{"--trace-forwarder-addr", "127.0.0.1:9000"}
	args := BuildArgs(cfg, "/x/config.json")
	assert.Equal(t, []string{"--trace-forwarder-addr", "127.0.0.1:9000"}, args[len(args)-2:])
}

func TestBuildRTSEnv(t *testing.T) {
	assert.Equal(t, "", BuildRTSEnv(config.ResourcesConfig{}))
	assert.Equal(t, "-M4096M", BuildRTSEnv(config.ResourcesConfig{MaxMemoryMB: 4096}))
	assert.Equal(t, "-M4096M -N4 -c", BuildRTSEnv(config.ResourcesConfig{MaxMemoryMB: 4096, RTSThreads: 4, MemoryCompaction: true}))
}

func TestReadPIDMissingIsNodeNotRunning(t *testing.T) {
	_, err := readPID(filepath.Join(t.TempDir(), "node.pid"))
	require.Error(t, err)
	assert.True(t, orcherrors.Is(err, orcherrors.KindNodeNotRunning))
}

func TestWritePIDAndReadPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.pid")
	require.NoError(t, writePID(path, 4242))
	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
}

func TestProcessExistsForSelf(t *testing.T) {
	assert.True(t, processExists(os.Getpid()))
}

func TestProcessExistsFalseForImpossiblePID(t *testing.T) {
	assert.False(t, processExists(1<<30))
}

func TestHasChainDataFalseWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkMainnet, dir)
	s := New(cfg, "/bin/true", "")
	assert.False(t, s.HasChainData())
}

func TestHasChainDataTrueWithFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkMainnet, dir)
	require.NoError(t, os.MkdirAll(cfg.Paths().DBImmutable, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths().DBImmutable, "00000.chunk"), []byte("x"), 0o644))
	s := New(cfg, "/bin/true", "")
	assert.True(t, s.HasChainData())
}

func TestSplitStatFieldsHandlesParensInComm(t *testing.T) {
	fields := splitStatFields("4242 (cardano node) S 1 4242 4242 0 -1 4194560 100 0 0 0 12 3 0 0 20 0 1 0 98765")
	require.GreaterOrEqual(t, len(fields), 2)
	assert.Equal(t, "4242", fields[0])
	assert.Equal(t, "cardano node", fields[1])
}

func TestProcessUptimeSecondsZeroForMissingProc(t *testing.T) {
	assert.Equal(t, int64(0), processUptimeSeconds(1<<30))
}

func TestProcessRSSMBZeroForMissingProc(t *testing.T) {
	assert.Equal(t, uint64(0), processRSSMB(1<<30))
}

func TestQueryRunningFalseWhenNoPIDFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults(config.NetworkMainnet, dir)
	s := New(cfg, "/bin/true", "")
	status, err := s.Query()
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func indexOfStr(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}
