// Package commands implements the kforge subcommands.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/cli/config"
	"github.com/leapstack-labs/kforge/internal/family"
	"github.com/leapstack-labs/kforge/internal/planner"
)

// planningContext assembles the planner context from loaded configuration.
// The backend kind, toolchain version and requested architectures are probe
// results the surrounding environment feeds in; they are validated here
// before any planning work starts.
func planningContext(cfg *config.Config) (*planner.Context, error) {
	backend, err := planner.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	requested, err := archspec.ParseSet(cfg.Archs)
	if err != nil {
		return nil, fmt.Errorf("requested architectures: %w", err)
	}

	pctx := &planner.Context{
		Backend:          backend,
		ToolchainVersion: cfg.ToolchainVersion,
		Requested:        requested,
		Libraries:        cfg.Libraries,
	}
	if err := pctx.Validate(); err != nil {
		return nil, err
	}
	return pctx, nil
}

// loadTable reads and validates the kernel table named by the config.
// Generator paths are anchored at the project root so invocation and glob
// evaluation do not depend on the planner's working directory.
func loadTable(cfg *config.Config) (*family.Table, error) {
	table, err := family.Load(cfg.Kernels)
	if err != nil {
		return nil, fmt.Errorf("loading kernel table %s: %w", cfg.Kernels, err)
	}
	for _, f := range table.Families {
		if g := f.Generator; g != nil {
			g.Tool = anchor(g.Tool, cfg.ProjectRoot)
			g.OutputGlob = anchor(g.OutputGlob, cfg.ProjectRoot)
			for i, in := range g.Inputs {
				g.Inputs[i] = anchor(in, cfg.ProjectRoot)
			}
		}
	}
	return table, nil
}

func anchor(path, root string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
