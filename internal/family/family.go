// Package family defines the declarative kernel-family table.
// A family is a named group of source files implementing one hardware
// specialization, gated by a minimum toolchain version and a supported
// architecture set. Tables load from YAML (kernels.yaml) or Starlark
// (kernels.star) and are validated up front, before any planning runs.
package family

import (
	"fmt"

	"github.com/leapstack-labs/kforge/internal/archspec"
)

// GeneratorRef points a family at an external source-generating tool.
type GeneratorRef struct {
	// ID keys the persisted input signature; it must be unique per table.
	ID string `yaml:"id"`
	// Tool is the path or command of the generation tool.
	Tool string `yaml:"tool"`
	// Args are passed verbatim to the tool.
	Args []string `yaml:"args"`
	// Inputs are the files whose content gates re-generation.
	Inputs []string `yaml:"inputs"`
	// OutputGlob matches the files the tool produces.
	OutputGlob string `yaml:"output_glob"`
}

// Family is one immutable kernel specialization record. Instances are built
// once per planning run from static configuration and never mutated.
type Family struct {
	Name        string        `yaml:"name"`
	Group       string        `yaml:"group"`
	Targets     []string      `yaml:"targets"`
	Rank        int           `yaml:"rank"`
	Sources     []string      `yaml:"sources"`
	MinVersion  string        `yaml:"min_version"`
	Archs       []string      `yaml:"archs"`
	Defines     []string      `yaml:"defines"`
	IncludeDirs []string      `yaml:"include_dirs"`
	Library     string        `yaml:"library"`
	Generator   *GeneratorRef `yaml:"generator"`

	// Supported is the parsed form of Archs, populated by Table.Validate.
	Supported archspec.Set `yaml:"-"`
}

// TargetSpec declares one output artifact families contribute to.
type TargetSpec struct {
	Name        string `yaml:"name"`
	Destination string `yaml:"destination"`
	Mandatory   bool   `yaml:"mandatory"`
	ABIStable   bool   `yaml:"abi_stable"`
}

// Table is the full static configuration for one planning run.
type Table struct {
	Targets  []TargetSpec `yaml:"targets"`
	Families []*Family    `yaml:"kernels"`
}

// Target looks up a declared target spec by name.
func (t *Table) Target(name string) (TargetSpec, bool) {
	for _, ts := range t.Targets {
		if ts.Name == name {
			return ts, true
		}
	}
	return TargetSpec{}, false
}

func (t *Table) String() string {
	return fmt.Sprintf("table(%d targets, %d kernel families)", len(t.Targets), len(t.Families))
}
