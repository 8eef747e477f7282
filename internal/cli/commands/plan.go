package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/kforge/internal/cli/config"
	"github.com/leapstack-labs/kforge/internal/emit"
	"github.com/leapstack-labs/kforge/internal/gencache"
	"github.com/leapstack-labs/kforge/internal/planner"
	"github.com/leapstack-labs/kforge/internal/state"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Resolve the kernel table and emit build-target descriptors",
		Long: `Resolve the kernel table against the probed planning context.

Eligible families are selected, overlapping specializations resolved, source
generators run (skipped when their input signatures are unchanged), and the
resulting build targets written as JSON descriptors for the external build
executor.`,
		Example: `  # Plan with kforge.yaml in the current directory
  kforge plan

  # Override the probe results
  kforge plan --backend cuda --toolchain-version 12.8 --archs 8.0,9.0a`,
		Args: cobra.NoArgs,
		RunE: runPlan,
	}
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.LoggerFromContext(ctx)

	pctx, err := planningContext(cfg)
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	run, err := store.CreateRun(string(pctx.Backend), pctx.ToolchainVersion)
	if err != nil {
		return err
	}
	logger.Debug("created plan run", "run_id", run.ID)

	p := planner.New(store, &gencache.ProcessExecutor{Dir: cfg.ProjectRoot}, cfg.LogDir, cfg.Parallelism, logger)
	plan, err := p.Plan(ctx, pctx, table)
	if err != nil {
		_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return err
	}

	targets, err := emit.FromPlan(plan)
	if err != nil {
		_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return err
	}

	path, err := emit.WriteJSON(cfg.OutDir, targets)
	if err != nil {
		_ = store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return err
	}
	if err := store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
		return err
	}

	included := 0
	for _, d := range plan.Decisions {
		if d.Included {
			included++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Planned %d target(s) from %d/%d kernel families -> %s\n",
		len(targets), included, len(plan.Decisions), path)
	return nil
}
