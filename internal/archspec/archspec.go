// Package archspec parses and compares hardware-generation identifiers.
// It normalizes raw architecture strings (e.g. "8.0", "9.0a", "8.9+PTX")
// into comparable specs and implements the loose-intersection matching
// used when deciding which kernel specializations apply to a build.
package archspec

import (
	"fmt"
	"regexp"
	"strconv"
)

// Variant distinguishes how a generation identifier targets hardware.
type Variant int

const (
	// Exact targets one generation with a binary for exactly that hardware.
	Exact Variant = iota
	// FamilyOnly targets a generation with family-specific features that do
	// not carry forward to later generations ("a" suffix).
	FamilyOnly
	// ForwardCompatible emits intermediate code for the generation that also
	// satisfies newer, unspecified generations at link time ("+PTX" suffix).
	ForwardCompatible
)

// String returns the suffix form used in raw identifiers.
func (v Variant) String() string {
	switch v {
	case FamilyOnly:
		return "a"
	case ForwardCompatible:
		return "+PTX"
	default:
		return ""
	}
}

// Spec is a normalized hardware-generation identifier. It is comparable and
// usable as a map key. Ordering is (Major, Minor) ascending.
type Spec struct {
	Major   int
	Minor   int
	Variant Variant
}

// String renders the spec back in raw identifier form.
func (s Spec) String() string {
	return fmt.Sprintf("%d.%d%s", s.Major, s.Minor, s.Variant)
}

// SameGeneration reports whether two specs name the same major.minor family,
// ignoring variant tags.
func (s Spec) SameGeneration(o Spec) bool {
	return s.Major == o.Major && s.Minor == o.Minor
}

// Less orders specs by (Major, Minor) ascending. Variants of the same
// generation compare via variantRank so ordering stays total.
func (s Spec) Less(o Spec) bool {
	if s.Major != o.Major {
		return s.Major < o.Major
	}
	if s.Minor != o.Minor {
		return s.Minor < o.Minor
	}
	return variantRank(s.Variant) < variantRank(o.Variant)
}

// variantRank orders variant tags for deterministic sequences; Exact sorts
// first so ascendingUnique keeps it as the representative on ties.
func variantRank(v Variant) int {
	switch v {
	case Exact:
		return 0
	case FamilyOnly:
		return 1
	default:
		return 2
	}
}

// ParseError reports a malformed architecture identifier in static
// configuration. It is a configuration-authoring bug and always fatal.
type ParseError struct {
	Raw string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid architecture %q: %s", e.Raw, e.Msg)
}

var archPattern = regexp.MustCompile(`^(\d+)\.(\d+)(a)?(\+PTX)?$`)

// Parse normalizes a raw identifier into a Spec.
// Accepted forms: "M.N", "M.Na" (family-only), "M.N+PTX" (forward compatible).
func Parse(raw string) (Spec, error) {
	m := archPattern.FindStringSubmatch(raw)
	if m == nil {
		return Spec{}, &ParseError{Raw: raw, Msg: "expected MAJOR.MINOR with optional 'a' or '+PTX' suffix"}
	}
	if m[3] != "" && m[4] != "" {
		return Spec{}, &ParseError{Raw: raw, Msg: "'a' and '+PTX' suffixes cannot be combined"}
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Spec{}, &ParseError{Raw: raw, Msg: "major component is not a number"}
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Spec{}, &ParseError{Raw: raw, Msg: "minor component is not a number"}
	}
	variant := Exact
	if m[3] != "" {
		variant = FamilyOnly
	}
	if m[4] != "" {
		variant = ForwardCompatible
	}
	return Spec{Major: major, Minor: minor, Variant: variant}, nil
}

// MustParse is Parse for known-good literals; it panics on error.
// Intended for tests and compiled-in defaults only.
func MustParse(raw string) Spec {
	s, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// matches implements the loose matching rule between a supported and a
// requested spec. Specs of the same generation always match: equal tags
// trivially, FamilyOnly against Exact within one family, and a
// ForwardCompatible side against any request for the same family that
// carries no more specific exact tag. Cross-generation requests never match
// here; forward compatibility with newer generations is a link-time property
// of the emitted artifact, not a planning-time claim.
func matches(supported, requested Spec) bool {
	return supported.SameGeneration(requested)
}
