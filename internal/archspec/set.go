package archspec

import (
	"sort"
	"strings"
)

// Set is a set of architecture specs. Duplicates collapse; membership ignores
// insertion order. The zero value is an empty, usable set for reads, but Add
// requires a set made with NewSet.
type Set map[Spec]struct{}

// NewSet builds a set from the given specs.
func NewSet(specs ...Spec) Set {
	s := make(Set, len(specs))
	for _, sp := range specs {
		s[sp] = struct{}{}
	}
	return s
}

// ParseSet normalizes a list of raw identifiers into a Set.
// The first malformed identifier aborts with its ParseError.
func ParseSet(raw []string) (Set, error) {
	s := make(Set, len(raw))
	for _, r := range raw {
		sp, err := Parse(r)
		if err != nil {
			return nil, err
		}
		s[sp] = struct{}{}
	}
	return s, nil
}

// Add inserts a spec.
func (s Set) Add(sp Spec) {
	s[sp] = struct{}{}
}

// Contains reports exact membership (generation and variant).
func (s Set) Contains(sp Spec) bool {
	_, ok := s[sp]
	return ok
}

// Len returns the number of distinct specs.
func (s Set) Len() int { return len(s) }

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return len(s) == 0 }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for sp := range s {
		out[sp] = struct{}{}
	}
	return out
}

// Union returns a new set with the members of both operands.
func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for sp := range s {
		out[sp] = struct{}{}
	}
	for sp := range o {
		out[sp] = struct{}{}
	}
	return out
}

// Subtract returns the members of s that have no loose match in o.
// Subtraction is idempotent: (A − B) − B == A − B.
func (s Set) Subtract(o Set) Set {
	out := make(Set)
	for sp := range s {
		claimed := false
		for osp := range o {
			if matches(osp, sp) {
				claimed = true
				break
			}
		}
		if !claimed {
			out[sp] = struct{}{}
		}
	}
	return out
}

// LooseIntersect returns the subset of requested that has a loose match in
// supported. The result is order-independent and always a subset of requested.
func LooseIntersect(supported, requested Set) Set {
	out := make(Set)
	for req := range requested {
		for sup := range supported {
			if matches(sup, req) {
				out[req] = struct{}{}
				break
			}
		}
	}
	return out
}

// AscendingUnique extracts a strictly increasing, duplicate-free sequence.
// Variants of the same generation collapse to one representative, Exact
// preferred over FamilyOnly, FamilyOnly over ForwardCompatible.
func (s Set) AscendingUnique() []Spec {
	all := make([]Spec, 0, len(s))
	for sp := range s {
		all = append(all, sp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })

	out := all[:0]
	for _, sp := range all {
		if len(out) > 0 && out[len(out)-1].SameGeneration(sp) {
			continue // earlier variant rank already holds the slot
		}
		out = append(out, sp)
	}
	return out
}

// Strings renders the ascending-unique sequence as raw identifiers.
func (s Set) Strings() []string {
	specs := s.AscendingUnique()
	out := make([]string, len(specs))
	for i, sp := range specs {
		out[i] = sp.String()
	}
	return out
}

// String renders the set for logs and error messages.
func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}
