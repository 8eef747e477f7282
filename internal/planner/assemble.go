package planner

import (
	"sort"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/family"
)

// ResolvedTarget is one output artifact with everything accumulated from the
// families that ended up contributing to it.
type ResolvedTarget struct {
	Spec        family.TargetSpec
	Sources     []string
	Defines     []string
	IncludeDirs []string
	Libraries   []string
	Archs       archspec.Set
}

// Plan is the outcome of one planning pass: resolved targets in declaration
// order plus the complete diagnostic record. Plans are built incrementally
// during one pass and discarded after emission.
type Plan struct {
	Targets   []*ResolvedTarget
	Decisions []*Decision
}

// Decision returns the diagnostic record for a family name.
func (p *Plan) Decision(name string) (*Decision, bool) {
	for _, d := range p.Decisions {
		if d.Family.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Assemble resolves overlap between included families and accumulates the
// per-target source/flag/architecture sets. generated maps family names to
// files produced by their generators, already current when this runs.
//
// Included families are processed in ascending priority rank, name as the
// tiebreaker so the claim order is a documented total order. Within one
// group, each family claims what higher-priority families left unclaimed;
// a fully shadowed family stays included for diagnostics but contributes
// nothing.
func Assemble(ctx *Context, table *family.Table, decisions []*Decision, generated map[string][]string) *Plan {
	targets := make(map[string]*ResolvedTarget, len(table.Targets))
	plan := &Plan{Decisions: decisions}
	for _, ts := range table.Targets {
		rt := &ResolvedTarget{Spec: ts, Archs: archspec.NewSet()}
		targets[ts.Name] = rt
		plan.Targets = append(plan.Targets, rt)
	}

	included := make([]*Decision, 0, len(decisions))
	for _, d := range decisions {
		if d.Included {
			included = append(included, d)
		}
	}
	sort.SliceStable(included, func(i, j int) bool {
		if included[i].Family.Rank != included[j].Family.Rank {
			return included[i].Family.Rank < included[j].Family.Rank
		}
		return included[i].Family.Name < included[j].Family.Name
	})

	claimed := make(map[string]archspec.Set)
	for _, d := range included {
		f := d.Family
		already, ok := claimed[f.Group]
		if !ok {
			already = archspec.NewSet()
		}

		effective := d.ArchMatch.Subtract(already)
		d.Effective = effective
		if effective.Empty() {
			// Fully shadowed by higher-priority specializations.
			continue
		}
		claimed[f.Group] = already.Union(effective)

		sources := append([]string{}, f.Sources...)
		sources = append(sources, generated[f.Name]...)

		for _, name := range f.Targets {
			rt := targets[name]
			rt.Sources = append(rt.Sources, sources...)
			rt.Defines = append(rt.Defines, f.Defines...)
			rt.IncludeDirs = append(rt.IncludeDirs, f.IncludeDirs...)
			if d.Library != "" {
				rt.Libraries = append(rt.Libraries, d.Library)
			}
			rt.Archs = rt.Archs.Union(effective)
		}
	}

	return plan
}
