package family

import (
	"fmt"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/toolchain"
)

// Validate checks the whole table and parses per-family architecture sets.
// It must succeed before any planning proceeds: malformed architecture or
// version strings here are configuration-authoring bugs, and structural
// mistakes (duplicate names, dangling target references) are caught in the
// same pass. Validation mutates only the derived Supported field.
func (t *Table) Validate() error {
	if len(t.Families) == 0 {
		return fmt.Errorf("kernel table declares no families")
	}

	targetNames := make(map[string]bool, len(t.Targets))
	for _, ts := range t.Targets {
		if ts.Name == "" {
			return fmt.Errorf("target with empty name")
		}
		if targetNames[ts.Name] {
			return fmt.Errorf("duplicate target %q", ts.Name)
		}
		targetNames[ts.Name] = true
	}

	famNames := make(map[string]bool, len(t.Families))
	genIDs := make(map[string]string)
	for _, f := range t.Families {
		if f.Name == "" {
			return fmt.Errorf("kernel family with empty name")
		}
		if famNames[f.Name] {
			return fmt.Errorf("duplicate kernel family %q", f.Name)
		}
		famNames[f.Name] = true

		if f.Group == "" {
			// A family with no declared group competes with nobody.
			f.Group = f.Name
		}

		if len(f.Targets) == 0 {
			return fmt.Errorf("kernel family %q: no target membership declared", f.Name)
		}
		for _, tgt := range f.Targets {
			if !targetNames[tgt] {
				return fmt.Errorf("kernel family %q: unknown target %q", f.Name, tgt)
			}
		}

		if err := toolchain.Validate(f.MinVersion); err != nil {
			return fmt.Errorf("kernel family %q: %w", f.Name, err)
		}

		if len(f.Archs) == 0 {
			return fmt.Errorf("kernel family %q: no supported architectures declared", f.Name)
		}
		supported, err := archspec.ParseSet(f.Archs)
		if err != nil {
			return fmt.Errorf("kernel family %q: %w", f.Name, err)
		}
		f.Supported = supported

		if len(f.Sources) == 0 && f.Generator == nil {
			return fmt.Errorf("kernel family %q: no sources and no generator", f.Name)
		}

		if g := f.Generator; g != nil {
			if g.ID == "" || g.Tool == "" || g.OutputGlob == "" {
				return fmt.Errorf("kernel family %q: generator needs id, tool and output_glob", f.Name)
			}
			if len(g.Inputs) == 0 {
				return fmt.Errorf("kernel family %q: generator %q declares no inputs", f.Name, g.ID)
			}
			if owner, dup := genIDs[g.ID]; dup {
				return fmt.Errorf("generator id %q declared by both %q and %q", g.ID, owner, f.Name)
			}
			genIDs[g.ID] = f.Name
		}
	}
	return nil
}
