// Package emit turns resolved build plans into target descriptors for the
// external compiler/linker executor. Descriptors are plain JSON; nothing in
// them constrains compilation order, so the executor may build targets and
// sources in parallel.
package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/kforge/internal/planner"
)

// Target is one emitted build-target descriptor.
type Target struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination"`
	Sources     []string `json:"sources"`
	Defines     []string `json:"defines,omitempty"`
	IncludeDirs []string `json:"include_dirs,omitempty"`
	Archs       []string `json:"archs"`
	Libraries   []string `json:"libraries,omitempty"`
	ABIStable   bool     `json:"abi_stable"`
}

// FromPlan emits descriptors for every resolved target in the plan.
// A target with zero resolved sources is omitted without error unless its
// spec declares it mandatory, which is fatal. Each target's emission is
// independent of the others.
func FromPlan(plan *planner.Plan) ([]Target, error) {
	targets := make([]Target, 0, len(plan.Targets))
	for _, rt := range plan.Targets {
		sources := dedupeOrdered(rt.Sources)
		if len(sources) == 0 {
			if rt.Spec.Mandatory {
				return nil, &planner.ConfigurationError{
					Subject: rt.Spec.Name,
					Msg:     "mandatory target resolved to zero sources",
				}
			}
			continue
		}
		targets = append(targets, Target{
			Name:        rt.Spec.Name,
			Destination: rt.Spec.Destination,
			Sources:     sources,
			Defines:     sortedUnique(rt.Defines),
			IncludeDirs: dedupeOrdered(rt.IncludeDirs),
			Archs:       rt.Archs.Strings(),
			Libraries:   sortedUnique(rt.Libraries),
			ABIStable:   rt.Spec.ABIStable,
		})
	}
	return targets, nil
}

// WriteJSON serializes the descriptors into <dir>/targets.json.
func WriteJSON(dir string, targets []Target) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, "targets.json")
	data, err := json.MarshalIndent(targets, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode targets: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// dedupeOrdered drops repeats while preserving first-seen order.
func dedupeOrdered(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// sortedUnique renders set-valued fields deterministically.
func sortedUnique(in []string) []string {
	out := dedupeOrdered(in)
	sort.Strings(out)
	return out
}
