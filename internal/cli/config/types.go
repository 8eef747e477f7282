// Package config loads kforge CLI configuration. Values layer in the usual
// order: built-in defaults, then kforge.yaml, then KFORGE_* environment
// variables, then explicitly set command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Kernels is the path to the kernel table (kernels.yaml or kernels.star).
	Kernels string `koanf:"kernels"`
	// OutDir receives the emitted target descriptors.
	OutDir string `koanf:"out_dir"`
	// StatePath is the SQLite database persisting generator signatures.
	StatePath string `koanf:"state_path"`
	// LogDir receives one log artifact per invoked generator.
	LogDir string `koanf:"log_dir"`

	// Backend, ToolchainVersion, Archs and Libraries form the planning
	// context. They are probe results supplied by the surrounding build
	// environment; kforge does not detect them itself.
	Backend          string            `koanf:"backend"`
	ToolchainVersion string            `koanf:"toolchain_version"`
	Archs            []string          `koanf:"archs"`
	Libraries        map[string]string `koanf:"libraries"`

	// Parallelism bounds concurrent generator invocations.
	Parallelism int  `koanf:"parallelism"`
	Verbose     bool `koanf:"verbose"`

	// ProjectRoot anchors relative paths; derived, never read from config.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultKernels   = "kernels.yaml"
	DefaultOutDir    = "build/plan"
	DefaultStateFile = ".kforge/state.db"
	DefaultLogDir    = ".kforge/logs"
	DefaultBackend   = "cuda"
)
