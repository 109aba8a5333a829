package platform

import "fmt"

// AssetNameCandidates returns the ordered list of release-asset name
// substrings to try, most specific first, ending in generic Linux
// fallbacks. The binary resolver walks this list against a release's
// asset names and takes the first match.
func (p *Profile) AssetNameCandidates(version string) []string {
	var names []string

	switch p.Tier {
	case TierExact:
		names = append(names,
			fmt.Sprintf("%s-%s-%s", p.Distro, p.DistroVersion, p.Arch),
			fmt.Sprintf("%s-%s", p.Distro, p.DistroVersion),
		)
		if p.Distro == "ubuntu" {
			switch p.DistroVersion {
			case "22.04":
				names = append(names, "ubuntu-20.04")
			case "20.04":
				names = append(names, "ubuntu-18.04")
			}
		}
	case TierCompatible:
		compat := p.compatibleVersion()
		names = append(names,
			fmt.Sprintf("%s-%s-%s", p.Distro, compat, p.Arch),
			fmt.Sprintf("%s-%s", p.Distro, compat),
		)
	case TierStatic, TierFallback:
		names = append(names,
			fmt.Sprintf("static-%s", p.Arch),
			"static",
			fmt.Sprintf("musl-%s", p.Arch),
			"musl",
		)
	}

	names = append(names, fmt.Sprintf("linux-%s", p.Arch), "linux")
	return names
}

// compatibleVersion maps an arbitrary distro version down to the nearest
// published baseline, using lexicographic comparison to match the
// reference matrix exactly (not semantic version comparison).
func (p *Profile) compatibleVersion() string {
	switch p.Distro {
	case "ubuntu":
		switch {
		case p.DistroVersion >= "22.04":
			return "22.04"
		case p.DistroVersion >= "20.04":
			return "20.04"
		default:
			return "18.04"
		}
	case "debian":
		switch {
		case p.DistroVersion >= "12":
			return "12"
		case p.DistroVersion >= "11":
			return "11"
		default:
			return "10"
		}
	case "rhel":
		if p.DistroVersion >= "9" {
			return "9"
		}
		return "8"
	default:
		return p.DistroVersion
	}
}
