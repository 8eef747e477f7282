package planner

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/kforge/internal/family"
	"github.com/leapstack-labs/kforge/internal/gencache"
)

// Planner runs the full planning pass: evaluate, generate, assemble.
// The signature store and process executor are injected so tests can
// substitute fakes and assert exact call counts.
type Planner struct {
	store  gencache.Store
	exec   gencache.Executor
	logDir string
	logger *slog.Logger
	// parallelism bounds concurrent generator invocations. Values below 2
	// keep the baseline single-threaded behavior.
	parallelism int
}

// New builds a planner.
func New(store gencache.Store, exec gencache.Executor, logDir string, parallelism int, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Planner{store: store, exec: exec, logDir: logDir, parallelism: parallelism, logger: logger}
}

// Plan resolves a validated table against the planning context.
//
// Generation runs for every included family with a generator reference,
// before the assembler consumes any source list; the produced files complete
// the owning family's sources. A generation failure aborts the whole run
// with no plan — partially built state is discarded.
func (p *Planner) Plan(ctx context.Context, pctx *Context, table *family.Table) (*Plan, error) {
	if err := pctx.Validate(); err != nil {
		return nil, err
	}

	decisions := Evaluate(pctx, table.Families)
	for _, d := range decisions {
		if d.Included {
			p.logger.Debug("family included", "family", d.Family.Name, "archs", d.ArchMatch.String())
		} else {
			p.logger.Debug("family excluded", "family", d.Family.Name, "reason", d.Reason.String())
		}
	}

	generated, err := p.generate(ctx, decisions)
	if err != nil {
		return nil, err
	}

	return Assemble(pctx, table, decisions, generated), nil
}

// generate makes every included family's generated sources current.
func (p *Planner) generate(ctx context.Context, decisions []*Decision) (map[string][]string, error) {
	runner := gencache.NewRunner(p.store, p.exec, p.logDir, p.logger)

	generated := make(map[string][]string)
	var jobs []gencache.Job
	owners := make(map[string]string) // generator id -> family name
	for _, d := range decisions {
		if !d.Included || d.Family.Generator == nil {
			continue
		}
		g := d.Family.Generator
		owners[g.ID] = d.Family.Name
		jobs = append(jobs, gencache.Job{
			ID:         g.ID,
			Tool:       g.Tool,
			Args:       g.Args,
			Inputs:     g.Inputs,
			OutputGlob: g.OutputGlob,
		})
	}
	if len(jobs) == 0 {
		return generated, nil
	}

	produced, err := runner.EnsureAll(ctx, jobs, p.parallelism)
	if err != nil {
		return nil, err
	}
	for id, files := range produced {
		generated[owners[id]] = files
	}
	return generated, nil
}
