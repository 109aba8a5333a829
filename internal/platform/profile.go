// Package platform profiles the host system so internal/binary can choose
// the most compatible cardano-node release asset.
package platform

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// Tier ranks how confident a binary match is for the detected host.
type Tier int

const (
	// TierExact means an asset built specifically for this os/distro/version
	// combination is published.
	TierExact Tier = iota
	// TierCompatible means the closest published distro version will be
	// used instead of an exact match.
	TierCompatible
	// TierStatic means a statically-linked, distro-agnostic asset is
	// required (musl systems, Alpine, Arch).
	TierStatic
	// TierFallback means nothing in the matrix applies; the static asset
	// is tried anyway but may not run.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCompatible:
		return "compatible"
	case TierStatic:
		return "static"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Profile describes the attributes of the host relevant to binary
// selection.
type Profile struct {
	OS            string
	Arch          string
	Distro        string
	DistroVersion string
	GlibcVersion  string // empty: musl or undetectable
	KernelVersion string
	Tier          Tier
}

// Detect profiles the current host. It returns orcherrors.KindUnsupportedPlatform
// if the OS or architecture is outside what cardano-node publishes binaries for.
func Detect(ctx context.Context) (*Profile, error) {
	osName, err := detectOS()
	if err != nil {
		return nil, err
	}
	arch, err := detectArch()
	if err != nil {
		return nil, err
	}
	kernel := detectKernelVersion(ctx)
	distro, distroVersion := detectDistribution()
	glibc := detectGlibcVersion(ctx)

	p := &Profile{
		OS:            osName,
		Arch:          arch,
		Distro:        distro,
		DistroVersion: distroVersion,
		GlibcVersion:  glibc,
		KernelVersion: kernel,
	}
	p.Tier = determineTier(distro, distroVersion, glibc)
	return p, nil
}

func detectOS() (string, error) {
	if runtime.GOOS != "linux" {
		return "", orcherrors.New(orcherrors.KindUnsupportedPlatform, "platform.Detect", "OS: "+runtime.GOOS)
	}
	return "linux", nil
}

func detectArch() (string, error) {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64", nil
	case "arm64":
		return "aarch64", nil
	default:
		return "", orcherrors.New(orcherrors.KindUnsupportedPlatform, "platform.Detect", "architecture: "+runtime.GOARCH)
	}
}

func detectKernelVersion(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "uname", "-r").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func detectDistribution() (distro, version string) {
	if content, err := os.ReadFile("/etc/os-release"); err == nil {
		if d, v, ok := parseOSRelease(string(content)); ok {
			return d, v
		}
	}
	if d, v, ok := detectLegacyDistribution(); ok {
		return d, v
	}
	return "unknown", "unknown"
}

// parseOSRelease extracts ID= and VERSION_ID= from the contents of
// /etc/os-release, normalizing the distro name via normalizeDistroName.
func parseOSRelease(content string) (distro, version string, ok bool) {
	var id, versionID string
	var haveID, haveVersion bool

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ID="):
			id = strings.ToLower(strings.Trim(strings.TrimPrefix(line, "ID="), `"`))
			haveID = true
		case strings.HasPrefix(line, "VERSION_ID="):
			versionID = strings.Trim(strings.TrimPrefix(line, "VERSION_ID="), `"`)
			haveVersion = true
		}
	}

	if !haveID || !haveVersion {
		return "", "", false
	}
	return normalizeDistroName(id), versionID, true
}

func normalizeDistroName(distro string) string {
	switch distro {
	case "ubuntu", "debian", "alpine":
		return distro
	case "rhel", "centos", "rocky", "almalinux", "fedora":
		return "rhel"
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sle":
		return "opensuse"
	case "arch", "manjaro":
		return "arch"
	default:
		return "generic"
	}
}

var legacyReleaseFiles = []string{
	"/etc/debian_version",
	"/etc/redhat-release",
	"/etc/alpine-release",
	"/etc/arch-release",
}

func detectLegacyDistribution() (distro, version string, ok bool) {
	for _, file := range legacyReleaseFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		if d, v, ok := parseLegacyRelease(file, strings.TrimSpace(string(content))); ok {
			return d, v, true
		}
	}
	return "generic", "unknown", true
}

func parseLegacyRelease(file, content string) (distro, version string, ok bool) {
	switch file {
	case "/etc/debian_version":
		if content == "" {
			return "", "", false
		}
		if content[0] >= '0' && content[0] <= '9' {
			return "debian", content, true
		}
		return "debian", "unstable", true
	case "/etc/redhat-release":
		for _, word := range strings.Fields(content) {
			if word[0] >= '0' && word[0] <= '9' {
				major := strings.SplitN(word, ".", 2)[0]
				return "rhel", major, true
			}
		}
		return "rhel", "unknown", true
	case "/etc/alpine-release":
		if content == "" {
			return "", "", false
		}
		return "alpine", content, true
	case "/etc/arch-release":
		return "arch", "rolling", true
	default:
		return "", "", false
	}
}

// detectGlibcVersion tries ldd --version, then getconf GNU_LIBC_VERSION,
// then checks for the string "musl" in ldd --help output. Returns "" if
// the system is musl-based or the libc could not be determined.
func detectGlibcVersion(ctx context.Context) string {
	if out, err := exec.CommandContext(ctx, "ldd", "--version").Output(); err == nil {
		if v, ok := parseGlibcFromLdd(string(out)); ok {
			return v
		}
	}

	if out, err := exec.CommandContext(ctx, "getconf", "GNU_LIBC_VERSION").Output(); err == nil {
		fields := strings.Fields(string(out))
		if len(fields) >= 2 {
			return fields[1]
		}
	}

	if out, err := exec.CommandContext(ctx, "ldd", "--help").Output(); err == nil {
		if strings.Contains(string(out), "musl") {
			return ""
		}
	}

	return ""
}

// parseGlibcFromLdd extracts a "2.NN"-shaped token from output like
// "ldd (Ubuntu GLIBC 2.35-0ubuntu3.4) 2.35".
func parseGlibcFromLdd(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "GLIBC") && !strings.Contains(line, "glibc") {
			continue
		}
		for _, word := range strings.Fields(line) {
			if !strings.HasPrefix(word, "2.") {
				continue
			}
			rest := word[2:]
			allDigitsOrDot := true
			for _, r := range rest {
				if !(r >= '0' && r <= '9') && r != '.' {
					allDigitsOrDot = false
					break
				}
			}
			if allDigitsOrDot {
				return word, true
			}
		}
	}
	return "", false
}

func determineTier(distro, version, glibc string) Tier {
	switch distro {
	case "ubuntu":
		switch version {
		case "22.04", "20.04", "18.04":
			return TierExact
		default:
			return TierCompatible
		}
	case "debian":
		switch version {
		case "11", "10", "12":
			return TierExact
		default:
			return TierCompatible
		}
	case "rhel":
		switch version {
		case "8", "9":
			return TierExact
		default:
			return TierCompatible
		}
	case "alpine", "arch":
		return TierStatic
	case "generic", "unknown":
		if glibc == "" {
			return TierStatic
		}
		return TierFallback
	default:
		return TierFallback
	}
}
