package family

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/kforge/internal/archspec"
)

const validYAML = `
targets:
  - name: _kernels_C
    destination: build/lib
    mandatory: true
  - name: _moe_C
    destination: build/lib

kernels:
  - name: attention_generic
    group: attention
    targets: [_kernels_C]
    rank: 10
    sources: ["csrc/attention/*.cu"]
    min_version: "12.0"
    archs: ["7.5", "8.0", "8.6", "8.9", "9.0"]
  - name: attention_hopper
    group: attention
    targets: [_kernels_C]
    rank: 0
    sources: ["csrc/attention/hopper/*.cu"]
    min_version: "12.3"
    archs: ["9.0a"]
    defines: ["ENABLE_HOPPER_ATTN"]
  - name: moe_gen
    group: moe
    targets: [_moe_C]
    rank: 5
    min_version: "12.0"
    archs: ["8.0", "9.0a"]
    library: cutlass
    generator:
      id: moe_gen
      tool: scripts/generate_moe.py
      args: ["--tile", "128"]
      inputs: ["scripts/generate_moe.py", "csrc/moe/template.jinja"]
      output_glob: "generated/moe_*.cu"
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	table, err := LoadYAML(writeTable(t, validYAML))
	require.NoError(t, err)

	require.Len(t, table.Targets, 2)
	require.Len(t, table.Families, 3)

	ts, ok := table.Target("_kernels_C")
	require.True(t, ok)
	assert.True(t, ts.Mandatory)

	hopper := table.Families[1]
	assert.Equal(t, "attention_hopper", hopper.Name)
	assert.Equal(t, "attention", hopper.Group)
	assert.True(t, hopper.Supported.Contains(archspec.MustParse("9.0a")))

	moe := table.Families[2]
	require.NotNil(t, moe.Generator)
	assert.Equal(t, "moe_gen", moe.Generator.ID)
	assert.Equal(t, []string{"--tile", "128"}, moe.Generator.Args)
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte(`
targets:
  - name: t
    destination: out
kernels:
  - name: f
    targets: [t]
    min_version: "12.0"
    archs: ["8.0"]
    sources: ["a.cu"]
    banana: true
`))
	require.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Table {
		return &Table{
			Targets: []TargetSpec{{Name: "t", Destination: "out"}},
			Families: []*Family{{
				Name:       "f",
				Targets:    []string{"t"},
				Sources:    []string{"a.cu"},
				MinVersion: "12.0",
				Archs:      []string{"8.0"},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Table)
		errPart string
	}{
		{"empty table", func(t *Table) { t.Families = nil }, "no families"},
		{"duplicate family", func(t *Table) { t.Families = append(t.Families, t.Families[0]) }, "duplicate kernel family"},
		{"duplicate target", func(t *Table) { t.Targets = append(t.Targets, t.Targets[0]) }, "duplicate target"},
		{"unknown target", func(t *Table) { t.Families[0].Targets = []string{"nope"} }, `unknown target "nope"`},
		{"no target membership", func(t *Table) { t.Families[0].Targets = nil }, "no target membership"},
		{"bad version", func(t *Table) { t.Families[0].MinVersion = "dozen" }, "invalid toolchain version"},
		{"bad arch", func(t *Table) { t.Families[0].Archs = []string{"9.x"} }, "invalid architecture"},
		{"no archs", func(t *Table) { t.Families[0].Archs = nil }, "no supported architectures"},
		{"no sources no generator", func(t *Table) { t.Families[0].Sources = nil }, "no sources and no generator"},
		{"incomplete generator", func(t *Table) {
			t.Families[0].Generator = &GeneratorRef{ID: "g"}
		}, "generator needs id, tool and output_glob"},
		{"generator without inputs", func(t *Table) {
			t.Families[0].Generator = &GeneratorRef{ID: "g", Tool: "gen.py", OutputGlob: "out/*.cu"}
		}, "declares no inputs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := base()
			tt.mutate(table)
			err := table.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestValidate_DefaultGroup(t *testing.T) {
	table := &Table{
		Targets: []TargetSpec{{Name: "t", Destination: "out"}},
		Families: []*Family{{
			Name:       "solo",
			Targets:    []string{"t"},
			Sources:    []string{"a.cu"},
			MinVersion: "12.0",
			Archs:      []string{"8.0"},
		}},
	}
	require.NoError(t, table.Validate())
	assert.Equal(t, "solo", table.Families[0].Group)
}

func TestValidate_DuplicateGeneratorID(t *testing.T) {
	gen := func(id string) *GeneratorRef {
		return &GeneratorRef{ID: id, Tool: "gen.py", Inputs: []string{"in"}, OutputGlob: "out/*.cu"}
	}
	table := &Table{
		Targets: []TargetSpec{{Name: "t", Destination: "out"}},
		Families: []*Family{
			{Name: "a", Targets: []string{"t"}, MinVersion: "12.0", Archs: []string{"8.0"}, Generator: gen("g")},
			{Name: "b", Targets: []string{"t"}, MinVersion: "12.0", Archs: []string{"9.0"}, Generator: gen("g")},
		},
	}
	err := table.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `generator id "g"`)
}
