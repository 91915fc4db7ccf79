// Package version validates release versions and resolves the previously
// published version against the registry.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LatestTag is the registry's default distribution tag.
const LatestTag = "latest"

// ErrInvalidVersion is returned for strings that are not MAJOR.MINOR.PATCH(-PRERELEASE)?.
var ErrInvalidVersion = errors.New("invalid version")

var releasePattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// Validate checks that v is a release version without build metadata.
func Validate(v string) error {
	if !releasePattern.MatchString(v) {
		return fmt.Errorf("%w %q: expected MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH-PRERELEASE", ErrInvalidVersion, v)
	}
	if _, err := semver.StrictNewVersion(v); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidVersion, v, err)
	}
	return nil
}

// ExtractDistTag returns the distribution tag of v: the leading run of ASCII
// letters of its prerelease segment, lower-cased, or "latest".
func ExtractDistTag(v string) string {
	_, pre, ok := strings.Cut(v, "-")
	if !ok {
		return LatestTag
	}
	end := 0
	for end < len(pre) && isASCIILetter(pre[end]) {
		end++
	}
	if end == 0 {
		return LatestTag
	}
	return strings.ToLower(pre[:end])
}

// IsPrerelease reports whether v carries a prerelease segment.
func IsPrerelease(v string) bool {
	if sv, err := semver.NewVersion(v); err == nil {
		return sv.Prerelease() != ""
	}
	return strings.Contains(v, "-")
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
