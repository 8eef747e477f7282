package family

import (
	"fmt"

	"go.starlark.net/starlark"
)

// LoadStarlark executes a kernels.star file and collects the kernel table it
// declares. The file sees three builtins: build_target(...), generator(...)
// and kernel_family(...). Declaration order is preserved so rank ties stay
// deterministic across runs.
func LoadStarlark(path string) (*Table, error) {
	loader := &starlarkLoader{}

	thread := &starlark.Thread{
		Name: "kernels",
		Print: func(_ *starlark.Thread, _ string) {
			// Declarations only; print output is not part of the table.
		},
	}

	if _, err := starlark.ExecFile(thread, path, nil, loader.predeclared()); err != nil {
		return nil, fmt.Errorf("failed to evaluate kernel table: %w", err)
	}
	if err := loader.table.Validate(); err != nil {
		return nil, err
	}
	return &loader.table, nil
}

// starlarkLoader accumulates declarations made during ExecFile.
type starlarkLoader struct {
	table Table
}

func (l *starlarkLoader) predeclared() starlark.StringDict {
	return starlark.StringDict{
		"build_target":  starlark.NewBuiltin("build_target", l.buildTarget),
		"generator":     starlark.NewBuiltin("generator", makeGenerator),
		"kernel_family": starlark.NewBuiltin("kernel_family", l.kernelFamily),
	}
}

func (l *starlarkLoader) buildTarget(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ts TargetSpec
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &ts.Name,
		"destination", &ts.Destination,
		"mandatory?", &ts.Mandatory,
		"abi_stable?", &ts.ABIStable,
	); err != nil {
		return nil, err
	}
	l.table.Targets = append(l.table.Targets, ts)
	return starlark.None, nil
}

// generatorValue carries a generator declaration between the generator()
// call and the kernel_family() that owns it.
type generatorValue struct {
	ref GeneratorRef
}

func (g *generatorValue) String() string        { return fmt.Sprintf("generator(%q)", g.ref.ID) }
func (g *generatorValue) Type() string          { return "generator" }
func (g *generatorValue) Freeze()               {}
func (g *generatorValue) Truth() starlark.Bool  { return starlark.True }
func (g *generatorValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: generator") }

func makeGenerator(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ref GeneratorRef
	var genArgs, inputs *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"id", &ref.ID,
		"tool", &ref.Tool,
		"output_glob", &ref.OutputGlob,
		"args?", &genArgs,
		"inputs?", &inputs,
	); err != nil {
		return nil, err
	}
	var err error
	if ref.Args, err = stringList(genArgs, "args"); err != nil {
		return nil, err
	}
	if ref.Inputs, err = stringList(inputs, "inputs"); err != nil {
		return nil, err
	}
	return &generatorValue{ref: ref}, nil
}

func (l *starlarkLoader) kernelFamily(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var f Family
	var targets, sources, archs, defines, includeDirs *starlark.List
	var gen starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &f.Name,
		"targets", &targets,
		"min_version", &f.MinVersion,
		"archs", &archs,
		"group?", &f.Group,
		"rank?", &f.Rank,
		"sources?", &sources,
		"defines?", &defines,
		"include_dirs?", &includeDirs,
		"library?", &f.Library,
		"generator?", &gen,
	); err != nil {
		return nil, err
	}

	var err error
	if f.Targets, err = stringList(targets, "targets"); err != nil {
		return nil, err
	}
	if f.Sources, err = stringList(sources, "sources"); err != nil {
		return nil, err
	}
	if f.Archs, err = stringList(archs, "archs"); err != nil {
		return nil, err
	}
	if f.Defines, err = stringList(defines, "defines"); err != nil {
		return nil, err
	}
	if f.IncludeDirs, err = stringList(includeDirs, "include_dirs"); err != nil {
		return nil, err
	}

	if gen != nil && gen != starlark.None {
		gv, ok := gen.(*generatorValue)
		if !ok {
			return nil, fmt.Errorf("kernel_family: generator must be a generator(...) value, got %s", gen.Type())
		}
		ref := gv.ref
		f.Generator = &ref
	}

	l.table.Families = append(l.table.Families, &f)
	return starlark.None, nil
}

// stringList converts a Starlark list of strings to a Go slice.
func stringList(list *starlark.List, field string) ([]string, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]string, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		s, ok := starlark.AsString(list.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected string, got %s", field, i, list.Index(i).Type())
		}
		out = append(out, s)
	}
	return out, nil
}
