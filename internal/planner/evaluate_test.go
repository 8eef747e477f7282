package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/family"
)

func testContext(t *testing.T, version string, archs ...string) *Context {
	t.Helper()
	requested, err := archspec.ParseSet(archs)
	require.NoError(t, err)
	return &Context{
		Backend:          BackendCUDA,
		ToolchainVersion: version,
		Requested:        requested,
	}
}

func testFamily(t *testing.T, name, minVersion string, archs ...string) *family.Family {
	t.Helper()
	supported, err := archspec.ParseSet(archs)
	require.NoError(t, err)
	return &family.Family{
		Name:       name,
		Group:      name,
		Targets:    []string{"_kernels_C"},
		Sources:    []string{"csrc/" + name + ".cu"},
		MinVersion: minVersion,
		Archs:      archs,
		Supported:  supported,
	}
}

func TestEvaluate_Included(t *testing.T) {
	// Requested {8.0, 9.0a}, toolchain 12.8; family supports {8.0, 8.6, 9.0a}
	// with minimum 12.0: included, matching exactly the requested overlap.
	ctx := testContext(t, "12.8", "8.0", "9.0a")
	f := testFamily(t, "attention", "12.0", "8.0", "8.6", "9.0a")

	decisions := Evaluate(ctx, []*family.Family{f})
	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.True(t, d.Included)
	assert.Equal(t, ReasonIncluded, d.Reason)
	assert.Equal(t, []string{"8.0", "9.0a"}, d.ArchMatch.Strings())
}

func TestEvaluate_NoArchOverlap(t *testing.T) {
	ctx := testContext(t, "12.8", "7.5")
	f := testFamily(t, "hopper_only", "12.3", "9.0a")

	d := Evaluate(ctx, []*family.Family{f})[0]
	assert.False(t, d.Included)
	assert.Equal(t, ReasonNoArchOverlap, d.Reason)
}

func TestEvaluate_VersionTooLow(t *testing.T) {
	// Architecture overlaps, but the toolchain is older than required.
	ctx := testContext(t, "12.3", "9.0a")
	f := testFamily(t, "hopper_fp8", "12.8", "9.0a")

	d := Evaluate(ctx, []*family.Family{f})[0]
	assert.False(t, d.Included)
	assert.Equal(t, ReasonVersionTooLow, d.Reason)
	assert.False(t, d.ArchMatch.Empty(), "overlap is still computed for diagnostics")
}

func TestEvaluate_VersionTooLowTakesPrecedence(t *testing.T) {
	// Both conditions fail: version is reported, since it gates whether the
	// family's architecture table means anything.
	ctx := testContext(t, "12.0", "7.5")
	f := testFamily(t, "hopper_fp8", "12.8", "9.0a")

	d := Evaluate(ctx, []*family.Family{f})[0]
	assert.Equal(t, ReasonVersionTooLow, d.Reason)
}

func TestEvaluate_MissingLibrary(t *testing.T) {
	ctx := testContext(t, "12.8", "9.0a")
	f := testFamily(t, "machete", "12.0", "9.0a")
	f.Library = "cutlass"

	d := Evaluate(ctx, []*family.Family{f})[0]
	assert.False(t, d.Included)
	assert.Equal(t, ReasonMissingLibrary, d.Reason)

	// Same family with the handle resolved.
	ctx.Libraries = map[string]string{"cutlass": "/opt/cutlass/lib"}
	d = Evaluate(ctx, []*family.Family{f})[0]
	assert.True(t, d.Included)
	assert.Equal(t, "/opt/cutlass/lib", d.Library)
}

func TestEvaluate_OneDecisionPerFamily(t *testing.T) {
	ctx := testContext(t, "12.8", "8.0")
	families := []*family.Family{
		testFamily(t, "a", "12.0", "8.0"),
		testFamily(t, "b", "13.0", "8.0"),
		testFamily(t, "c", "12.0", "9.0"),
	}

	decisions := Evaluate(ctx, families)
	require.Len(t, decisions, 3)
	assert.Equal(t, "a", decisions[0].Family.Name)
	assert.Equal(t, ReasonIncluded, decisions[0].Reason)
	assert.Equal(t, ReasonVersionTooLow, decisions[1].Reason)
	assert.Equal(t, ReasonNoArchOverlap, decisions[2].Reason)
}

func TestDecision_Detail(t *testing.T) {
	ctx := testContext(t, "12.3", "9.0a")
	f := testFamily(t, "hopper_fp8", "12.8", "9.0a")

	d := Evaluate(ctx, []*family.Family{f})[0]
	assert.Contains(t, d.Detail(ctx), "requires toolchain >= 12.8, detected 12.3")
}

func TestParseBackend(t *testing.T) {
	for _, s := range []string{"cuda", "rocm", "cpu"} {
		b, err := ParseBackend(s)
		require.NoError(t, err)
		assert.Equal(t, Backend(s), b)
	}

	_, err := ParseBackend("metal")
	require.Error(t, err)
	var cerr *ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestContext_Validate(t *testing.T) {
	ctx := testContext(t, "12.8", "8.0")
	require.NoError(t, ctx.Validate())

	bad := *ctx
	bad.Backend = "metal"
	assert.Error(t, bad.Validate())

	bad = *ctx
	bad.ToolchainVersion = "dozen"
	assert.Error(t, bad.Validate())

	bad = *ctx
	bad.Requested = archspec.NewSet()
	assert.Error(t, bad.Validate())
}
