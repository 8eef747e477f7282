package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// findConfigFile picks the config file to use.
// Priority: explicit path > kforge.yaml > kforge.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"kforge.yaml", "kforge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolveRelativeTo resolves a path against baseDir unless already absolute.
func resolveRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load layers configuration from defaults, config file, environment and
// explicitly set flags, and resolves relative paths against the project
// root (the config file's directory, or the working directory without one).
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"kernels":     DefaultKernels,
		"out_dir":     DefaultOutDir,
		"state_path":  DefaultStateFile,
		"log_dir":     DefaultLogDir,
		"backend":     DefaultBackend,
		"parallelism": 1,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFile := findConfigFile(cfgFile)
	projectRoot, _ := os.Getwd()
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		if abs, err := filepath.Abs(configFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}
	if projectRoot == "" {
		projectRoot = "."
	}

	// KFORGE_TOOLCHAIN_VERSION -> toolchain_version
	if err := k.Load(env.Provider("KFORGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "KFORGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The CLI spells --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	cfg.Kernels = resolveRelativeTo(cfg.Kernels, projectRoot)
	cfg.OutDir = resolveRelativeTo(cfg.OutDir, projectRoot)
	cfg.StatePath = resolveRelativeTo(cfg.StatePath, projectRoot)
	cfg.LogDir = resolveRelativeTo(cfg.LogDir, projectRoot)

	return &cfg, nil
}
