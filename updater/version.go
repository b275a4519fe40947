package updater

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var versionRegex = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?` +
		`(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

// Version represents a semantic version.
// The zero value is 0.0.0.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
	Build      string
}

// ParseVersion parses a strict semantic version string such as "1.2.0",
// "0.9.0-rc.1" or "2.0.0+build.5". A leading "v" is rejected; use ParseTag
// for release tags.
func ParseVersion(s string) (Version, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil || !semver.IsValid("v"+s) {
		return Version{}, &Error{Kind: ErrVersionParse, Op: "parse version", Err: fmt.Errorf("invalid version format: %q", s)}
	}

	var nums [3]uint64
	for i := range nums {
		n, err := strconv.ParseUint(matches[i+1], 10, 64)
		if err != nil {
			return Version{}, &Error{Kind: ErrVersionParse, Op: "parse version", Err: err}
		}
		nums[i] = n
	}

	return Version{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: matches[4],
		Build:      matches[5],
	}, nil
}

// ParseTag parses a release tag, stripping one leading "v" or "V".
func ParseTag(tag string) (Version, error) {
	return ParseVersion(NormalizeTag(tag))
}

// NormalizeTag removes the 'v' prefix if present.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if strings.HasPrefix(tag, "v") || strings.HasPrefix(tag, "V") {
		return tag[1:]
	}
	return tag
}

// String returns the normalized string representation.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare compares two versions by semver precedence.
// Build metadata is ignored.
// Returns:
//   - 1 if v > other
//   - 0 if v == other
//   - -1 if v < other
func (v Version) Compare(other Version) int {
	return semver.Compare(v.semver(), other.semver())
}

// semver returns the "v"-prefixed form golang.org/x/mod/semver expects.
func (v Version) semver() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// IsGreaterThan returns true if v > other
func (v Version) IsGreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// IsLessThan returns true if v < other
func (v Version) IsLessThan(other Version) bool {
	return v.Compare(other) < 0
}

// IsEqual returns true if v and other have the same precedence.
func (v Version) IsEqual(other Version) bool {
	return v.Compare(other) == 0
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
