package planner

import (
	"fmt"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/family"
	"github.com/leapstack-labs/kforge/internal/toolchain"
)

// Reason explains one family's inclusion decision. Exactly one reason
// applies per family.
type Reason int

const (
	ReasonIncluded Reason = iota
	ReasonVersionTooLow
	ReasonNoArchOverlap
	ReasonMissingLibrary
)

func (r Reason) String() string {
	switch r {
	case ReasonIncluded:
		return "included"
	case ReasonVersionTooLow:
		return "version too low"
	case ReasonNoArchOverlap:
		return "no architecture overlap"
	case ReasonMissingLibrary:
		return "missing library"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Decision is the per-family diagnostic record. One is produced for every
// declared family, included or not.
type Decision struct {
	Family   *family.Family
	Included bool
	Reason   Reason
	// ArchMatch is the loose intersection of the family's supported set with
	// the requested set.
	ArchMatch archspec.Set
	// Effective is what remains of ArchMatch after higher-priority families
	// in the same group claimed their share. Populated by the assembler;
	// empty for excluded or fully shadowed families.
	Effective archspec.Set
	// Library is the resolved location of the family's required library,
	// when one is declared and resolves.
	Library string
}

// Detail renders the decision for diagnostics, naming the precise unmet
// condition for exclusions.
func (d *Decision) Detail(ctx *Context) string {
	switch d.Reason {
	case ReasonVersionTooLow:
		return fmt.Sprintf("requires toolchain >= %s, detected %s", d.Family.MinVersion, ctx.ToolchainVersion)
	case ReasonNoArchOverlap:
		return fmt.Sprintf("supports {%s}, requested {%s}", d.Family.Supported, ctx.Requested)
	case ReasonMissingLibrary:
		return fmt.Sprintf("library %q does not resolve", d.Family.Library)
	default:
		if d.Effective.Empty() {
			return "included (fully shadowed by higher-priority families)"
		}
		return fmt.Sprintf("included for {%s}", d.Effective)
	}
}

// Evaluate produces one decision per declared family, in declaration order.
// A family is included iff it is version-eligible, its architecture overlap
// is non-empty and its required library (if any) resolves. The version check
// runs independently of the overlap check; when both fail, version-too-low
// is reported, since the version gates whether the family's architecture
// table is meaningful at all.
func Evaluate(ctx *Context, families []*family.Family) []*Decision {
	decisions := make([]*Decision, 0, len(families))
	for _, f := range families {
		d := &Decision{
			Family:    f,
			ArchMatch: archspec.LooseIntersect(f.Supported, ctx.Requested),
			Effective: archspec.NewSet(),
		}

		lib, libOK := ctx.ResolveLibrary(f.Library)
		switch {
		case !toolchain.AtLeast(ctx.ToolchainVersion, f.MinVersion):
			d.Reason = ReasonVersionTooLow
		case d.ArchMatch.Empty():
			d.Reason = ReasonNoArchOverlap
		case !libOK:
			d.Reason = ReasonMissingLibrary
		default:
			d.Included = true
			d.Reason = ReasonIncluded
			d.Library = lib
		}
		decisions = append(decisions, d)
	}
	return decisions
}
