// Package cli provides the command-line interface for kforge.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/kforge/internal/cli/commands"
	"github.com/leapstack-labs/kforge/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kforge",
		Short: "kforge - capability-aware kernel build planner",
		Long: `kforge plans multi-architecture native kernel builds.

Given a declarative table of hardware-specialized kernel families and the
probed toolchain environment, it decides which families are eligible,
resolves overlapping specializations, runs cached source generators, and
emits build-target descriptors for an external compiler executor.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cmd.SetContext(config.IntoContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kforge.yaml)")
	rootCmd.PersistentFlags().String("kernels", "", "Path to the kernel table (kernels.yaml or kernels.star)")
	rootCmd.PersistentFlags().String("out-dir", "", "Directory for emitted target descriptors")
	rootCmd.PersistentFlags().String("state", "", "Path to the signature-store database")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for generator log artifacts")
	rootCmd.PersistentFlags().String("backend", "", "Detected backend kind (cuda|rocm|cpu)")
	rootCmd.PersistentFlags().String("toolchain-version", "", "Detected toolchain version")
	rootCmd.PersistentFlags().StringSlice("archs", nil, "Requested architecture set")
	rootCmd.PersistentFlags().Int("parallelism", 0, "Concurrent generator invocations")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewPlanCommand())
	rootCmd.AddCommand(commands.NewExplainCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
