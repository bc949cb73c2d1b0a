package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidFormat is returned when a string is not a valid semantic version.
var ErrInvalidFormat = errors.New("invalid version format")

// Parse strips a single leading "v" and parses the remainder as a strict
// MAJOR.MINOR.PATCH semantic version with optional pre-release and build parts.
func Parse(text string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(text, "v"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFormat, text, err)
	}
	return v, nil
}

// GreaterThan reports whether a denotes a strictly later release than b.
// Build metadata does not take part in the ordering.
func GreaterThan(a, b *semver.Version) bool {
	return a.Compare(b) > 0
}

// Compare parses both strings and returns -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return av.Compare(bv), nil
}
