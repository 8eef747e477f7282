// Package toolchain compares toolchain version strings.
// Versions are plain semantic triples ("12.8", "12.8.1"); there is no
// wildcard or range syntax.
package toolchain

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// InvalidVersionError reports a malformed version string in static
// configuration.
type InvalidVersionError struct {
	Raw string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid toolchain version %q: expected MAJOR[.MINOR[.PATCH]]", e.Raw)
}

// canonical converts "12.8" into the "v12.8" form x/mod/semver expects.
func canonical(raw string) string {
	return "v" + raw
}

// Validate checks that raw parses as a version.
func Validate(raw string) error {
	if raw == "" || !semver.IsValid(canonical(raw)) {
		return &InvalidVersionError{Raw: raw}
	}
	return nil
}

// Compare returns -1, 0 or +1 comparing a against b. Both inputs must have
// passed Validate; malformed input sorts before any valid version, matching
// semver.Compare.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// AtLeast reports whether detected >= required.
func AtLeast(detected, required string) bool {
	return Compare(detected, required) >= 0
}
