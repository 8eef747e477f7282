package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackend, cfg.Backend)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.True(t, filepath.IsAbs(cfg.Kernels) || cfg.ProjectRoot == ".", "kernels resolved against project root")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
kernels: tables/kernels.star
backend: rocm
toolchain_version: "6.2"
archs: ["9.0a", "8.0"]
libraries:
  cutlass: /opt/cutlass
parallelism: 4
`), 0o644))

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "rocm", cfg.Backend)
	assert.Equal(t, "6.2", cfg.ToolchainVersion)
	assert.Equal(t, []string{"9.0a", "8.0"}, cfg.Archs)
	assert.Equal(t, map[string]string{"cutlass": "/opt/cutlass"}, cfg.Libraries)
	assert.Equal(t, 4, cfg.Parallelism)

	// Relative paths anchor at the config file's directory.
	assert.Equal(t, filepath.Join(dir, "tables", "kernels.star"), cfg.Kernels)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: cuda\n"), 0o644))

	t.Setenv("KFORGE_BACKEND", "cpu")
	t.Setenv("KFORGE_TOOLCHAIN_VERSION", "12.8")

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Backend)
	assert.Equal(t, "12.8", cfg.ToolchainVersion)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: cuda\nstate_path: from_file.db\n"), 0o644))
	t.Setenv("KFORGE_BACKEND", "cpu")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "", "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--backend=rocm", "--state=/tmp/s.db"}))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "rocm", cfg.Backend)
	assert.Equal(t, "/tmp/s.db", cfg.StatePath, "--state maps to state_path and stays absolute")
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: rocm\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "cuda", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "rocm", cfg.Backend, "flag defaults must not clobber config values")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}
