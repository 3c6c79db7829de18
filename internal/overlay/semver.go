package overlay

import (
	"fmt"
	"regexp"
	"strings"
)

// semanticVersion is a parsed major.minor.patch tag, used by CheckRange to
// compare a resolved base tag against an extension's declared compatibility
// range.
//
// Adapted from github.com/githubnext/gh-aw's pkg/cli/semver.go, which
// parses release tags the same way to decide update compatibility.
type semanticVersion struct {
	major, minor, patch int
}

var semverParsePattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

func parseSemver(v string) *semanticVersion {
	v = strings.TrimPrefix(v, "v")
	matches := semverParsePattern.FindStringSubmatch(v)
	if matches == nil {
		return nil
	}

	ver := &semanticVersion{}
	if matches[1] != "" {
		_, _ = fmt.Sscanf(matches[1], "%d", &ver.major)
	}
	if matches[2] != "" {
		_, _ = fmt.Sscanf(matches[2], "%d", &ver.minor)
	}
	if matches[3] != "" {
		_, _ = fmt.Sscanf(matches[3], "%d", &ver.patch)
	}
	return ver
}

// compareVersions returns -1, 0, or 1 as a compares below, equal to, or
// above b. Tags that don't parse as semantic versions compare as equal,
// so an unparsable tag never trips a spurious compatibility warning.
func compareVersions(a, b string) int {
	va, vb := parseSemver(a), parseSemver(b)
	if va == nil || vb == nil {
		return 0
	}
	if va.major != vb.major {
		return sign(va.major - vb.major)
	}
	if va.minor != vb.minor {
		return sign(va.minor - vb.minor)
	}
	if va.patch != vb.patch {
		return sign(va.patch - vb.patch)
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
