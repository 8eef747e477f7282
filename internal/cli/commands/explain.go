package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/kforge/internal/cli/config"
	"github.com/leapstack-labs/kforge/internal/planner"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Show the per-family inclusion decisions without planning a build",
		Long: `Evaluate every kernel family against the planning context and print the
decision table: whether each family is included, the precise reason when it
is not, and the architectures it would claim. No generators run and no
targets are emitted.`,
		Args: cobra.NoArgs,
		RunE: runExplain,
	}
}

func runExplain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	pctx, err := planningContext(cfg)
	if err != nil {
		return err
	}
	tbl, err := loadTable(cfg)
	if err != nil {
		return err
	}

	decisions := planner.Evaluate(pctx, tbl.Families)
	// Assembly fills in the effective (post-overlap) sets; generated sources
	// do not change any decision, so none are passed.
	planner.Assemble(pctx, tbl, decisions, nil)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Group", "Rank", "Included", "Matched", "Effective", "Detail"})
	for _, d := range decisions {
		included := "no"
		if d.Included {
			included = "yes"
		}
		t.AppendRow(table.Row{
			d.Family.Name, d.Family.Group, d.Family.Rank,
			included, d.ArchMatch.String(), d.Effective.String(), d.Detail(pctx),
		})
	}
	t.Render()
	return nil
}
