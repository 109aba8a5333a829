package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOSRelease(t *testing.T) {
	content := `
NAME="Ubuntu"
VERSION="22.04.1 LTS (Jammy Jellyfish)"
ID=ubuntu
ID_LIKE=debian
PRETTY_NAME="Ubuntu 22.04.1 LTS"
VERSION_ID="22.04"
`
	distro, version, ok := parseOSRelease(content)
	assert.True(t, ok)
	assert.Equal(t, "ubuntu", distro)
	assert.Equal(t, "22.04", version)
}

func TestParseOSReleaseMissingFields(t *testing.T) {
	_, _, ok := parseOSRelease("NAME=\"Something\"\n")
	assert.False(t, ok)
}

func TestNormalizeDistroName(t *testing.T) {
	assert.Equal(t, "ubuntu", normalizeDistroName("ubuntu"))
	assert.Equal(t, "rhel", normalizeDistroName("centos"))
	assert.Equal(t, "rhel", normalizeDistroName("rocky"))
	assert.Equal(t, "generic", normalizeDistroName("unknown"))
	assert.Equal(t, "arch", normalizeDistroName("manjaro"))
	assert.Equal(t, "opensuse", normalizeDistroName("opensuse-leap"))
}

func TestParseGlibcFromLdd(t *testing.T) {
	out := "ldd (Ubuntu GLIBC 2.35-0ubuntu3.4) 2.35"
	v, ok := parseGlibcFromLdd(out)
	assert.True(t, ok)
	assert.Equal(t, "2.35", v)
}

func TestParseGlibcFromLddNoMatch(t *testing.T) {
	_, ok := parseGlibcFromLdd("musl libc (x86_64)\nVersion 1.2.3")
	assert.False(t, ok)
}

func TestParseLegacyReleaseDebian(t *testing.T) {
	distro, version, ok := parseLegacyRelease("/etc/debian_version", "11.6")
	assert.True(t, ok)
	assert.Equal(t, "debian", distro)
	assert.Equal(t, "11.6", version)
}

func TestParseLegacyReleaseRedHat(t *testing.T) {
	distro, version, ok := parseLegacyRelease("/etc/redhat-release", "CentOS Linux release 8.4.2105 (Core)")
	assert.True(t, ok)
	assert.Equal(t, "rhel", distro)
	assert.Equal(t, "8", version)
}

func TestDetermineTier(t *testing.T) {
	assert.Equal(t, TierExact, determineTier("ubuntu", "22.04", "2.35"))
	assert.Equal(t, TierCompatible, determineTier("ubuntu", "23.10", "2.38"))
	assert.Equal(t, TierExact, determineTier("debian", "12", "2.36"))
	assert.Equal(t, TierStatic, determineTier("alpine", "3.18", ""))
	assert.Equal(t, TierStatic, determineTier("arch", "rolling", "2.38"))
	assert.Equal(t, TierStatic, determineTier("generic", "unknown", ""))
	assert.Equal(t, TierFallback, determineTier("generic", "unknown", "2.31"))
}

func TestAssetNameCandidatesExact(t *testing.T) {
	p := &Profile{OS: "linux", Arch: "x86_64", Distro: "ubuntu", DistroVersion: "22.04", Tier: TierExact}
	cands := p.AssetNameCandidates("8.9.3")
	assert.Equal(t, []string{"ubuntu-22.04-x86_64", "ubuntu-22.04", "ubuntu-20.04", "linux-x86_64", "linux"}, cands)
}

func TestAssetNameCandidatesCompatibleFallsBackToClosest(t *testing.T) {
	p := &Profile{OS: "linux", Arch: "x86_64", Distro: "ubuntu", DistroVersion: "23.10", Tier: TierCompatible}
	cands := p.AssetNameCandidates("8.9.3")
	assert.Contains(t, cands, "ubuntu-22.04-x86_64")
}

func TestAssetNameCandidatesStatic(t *testing.T) {
	p := &Profile{OS: "linux", Arch: "x86_64", Tier: TierStatic}
	cands := p.AssetNameCandidates("8.9.3")
	assert.Equal(t, []string{"static-x86_64", "static", "musl-x86_64", "musl", "linux-x86_64", "linux"}, cands)
}
