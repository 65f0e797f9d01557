// Package semver parses and compares semantic versions per SemVer 2.0.0.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed semantic version. The zero value is 0.0.0.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64

	// Pre holds the pre-release identifiers in order ("rc" and "1" for "1.0.0-rc.1"). Empty for release versions.
	Pre []string

	// Build holds the build metadata identifiers. Build metadata never affects precedence.
	Build []string
}

// Parse parses versions like "1.2.3", "v1.2.3", or "1.2.3-rc.1+linux". A leading "v" is tolerated; major, minor, and patch must all be present.
func Parse(input string) (Version, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, errors.New("semver: empty version")
	}

	var v Version
	if head, meta, ok := strings.Cut(s, "+"); ok {
		s, v.Build = head, strings.Split(meta, ".")
	}
	if head, pre, ok := strings.Cut(s, "-"); ok {
		s, v.Pre = head, strings.Split(pre, ".")
		for _, id := range v.Pre {
			if id == "" {
				return Version{}, fmt.Errorf("semver: empty pre-release identifier in %q", input)
			}
		}
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("semver: %q is not major.minor.patch", input)
	}
	var err error
	if v.Major, err = parseNumber(parts[0]); err != nil {
		return Version{}, fmt.Errorf("semver: bad major in %q: %w", input, err)
	}
	if v.Minor, err = parseNumber(parts[1]); err != nil {
		return Version{}, fmt.Errorf("semver: bad minor in %q: %w", input, err)
	}
	if v.Patch, err = parseNumber(parts[2]); err != nil {
		return Version{}, fmt.Errorf("semver: bad patch in %q: %w", input, err)
	}
	return v, nil
}

func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Pre) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(v.Pre, "."))
	}
	if len(v.Build) > 0 {
		b.WriteByte('+')
		b.WriteString(strings.Join(v.Build, "."))
	}
	return b.String()
}

// Compare orders versions by SemVer precedence: -1 if v < other, 1 if v > other, 0 if equal. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	if c := compareUint(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareUint(v.Patch, other.Patch); c != 0 {
		return c
	}

	// A pre-release sorts below the plain release.
	switch {
	case len(v.Pre) == 0 && len(other.Pre) == 0:
		return 0
	case len(v.Pre) == 0:
		return 1
	case len(other.Pre) == 0:
		return -1
	}

	for i := 0; i < len(v.Pre) && i < len(other.Pre); i++ {
		if c := comparePreID(v.Pre[i], other.Pre[i]); c != 0 {
			return c
		}
	}
	return compareUint(uint64(len(v.Pre)), uint64(len(other.Pre)))
}

func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// comparePreID compares one pre-release identifier pair: numeric identifiers compare numerically and always sort below alphanumeric ones.
func comparePreID(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return compareUint(an, bn)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func parseNumber(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}
	return strconv.ParseUint(s, 10, 64)
}
