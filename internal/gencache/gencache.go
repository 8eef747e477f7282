// Package gencache drives external source-generating tools behind a
// content-addressed cache. A generator is re-invoked only when the signature
// of its inputs differs from the one persisted by a previous planning run;
// otherwise the files matched by its output glob are trusted as-is.
package gencache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Job describes one generator invocation.
type Job struct {
	// ID keys the persisted signature.
	ID string
	// Tool and Args form the external command.
	Tool string
	Args []string
	// Inputs are the files whose content forms the signature.
	Inputs []string
	// OutputGlob matches the files the tool produces.
	OutputGlob string
}

// Store persists generator signatures across planner invocations.
// Implementations must allow concurrent access to distinct keys.
type Store interface {
	// GetSignature returns the persisted signature for a generator id,
	// with ok=false when none has been recorded yet.
	GetSignature(id string) (sig string, ok bool, err error)
	// SetSignature records the signature for a generator id.
	SetSignature(id, sig string) error
}

// Executor runs a generation tool and captures its combined stdout/stderr.
// A non-zero exit code is reported through exitCode, not err; err covers
// failures to run the tool at all.
type Executor interface {
	Run(ctx context.Context, tool string, args []string) (exitCode int, combined []byte, err error)
}

// GenerationFailure is the fatal error for a generator that exited non-zero.
// It aborts the entire planning run; no signature update occurs for the
// failing generator.
type GenerationFailure struct {
	Generator string
	ExitCode  int
	LogPath   string
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generator %q failed with exit code %d (log: %s)", e.Generator, e.ExitCode, e.LogPath)
}

// Runner checks signatures and invokes generators as needed.
type Runner struct {
	store  Store
	exec   Executor
	logDir string
	logger *slog.Logger
}

// NewRunner builds a runner. Logs from invoked generators land in logDir,
// one file per generator identity.
func NewRunner(store Store, exec Executor, logDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{store: store, exec: exec, logDir: logDir, logger: logger}
}

// Ensure makes the job's output files current, invoking the tool only when
// the input signature changed. It returns the files matched by the output
// glob and whether an invocation happened.
func (r *Runner) Ensure(ctx context.Context, job Job) (files []string, regenerated bool, err error) {
	sig, err := Signature(job)
	if err != nil {
		return nil, false, fmt.Errorf("generator %q: %w", job.ID, err)
	}

	persisted, ok, err := r.store.GetSignature(job.ID)
	if err != nil {
		return nil, false, fmt.Errorf("generator %q: reading signature store: %w", job.ID, err)
	}
	if ok && persisted == sig {
		r.logger.Debug("generator up to date", "generator", job.ID, "signature", sig)
		files, err = r.outputs(job)
		return files, false, err
	}

	r.logger.Info("running generator", "generator", job.ID, "tool", job.Tool)

	exitCode, combined, runErr := r.exec.Run(ctx, job.Tool, job.Args)

	logPath, logErr := r.writeLog(job.ID, combined)
	if logErr != nil {
		r.logger.Warn("failed to write generator log", "generator", job.ID, "error", logErr)
	}

	if runErr != nil {
		return nil, false, fmt.Errorf("generator %q: failed to run %s: %w", job.ID, job.Tool, runErr)
	}
	if exitCode != 0 {
		return nil, false, &GenerationFailure{Generator: job.ID, ExitCode: exitCode, LogPath: logPath}
	}

	if err := r.store.SetSignature(job.ID, sig); err != nil {
		return nil, false, fmt.Errorf("generator %q: persisting signature: %w", job.ID, err)
	}

	files, err = r.outputs(job)
	return files, true, err
}

// EnsureAll runs Ensure for every job, at most limit at a time. Jobs touch
// only their own signature-store key, so no cross-job coordination is needed.
// The first failure cancels the remaining jobs and is returned.
func (r *Runner) EnsureAll(ctx context.Context, jobs []Job, limit int) (map[string][]string, error) {
	if limit <= 0 {
		limit = 1
	}

	produced := make(map[string][]string, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	type result struct {
		id    string
		files []string
	}
	results := make(chan result, len(jobs))

	for _, job := range jobs {
		g.Go(func() error {
			files, _, err := r.Ensure(ctx, job)
			if err != nil {
				return err
			}
			results <- result{id: job.ID, files: files}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for res := range results {
		produced[res.id] = res.files
	}
	return produced, nil
}

// outputs re-evaluates the output glob, sorted for determinism.
func (r *Runner) outputs(job Job) ([]string, error) {
	files, err := filepath.Glob(job.OutputGlob)
	if err != nil {
		return nil, fmt.Errorf("generator %q: bad output glob %q: %w", job.ID, job.OutputGlob, err)
	}
	sort.Strings(files)
	return files, nil
}

// writeLog stores the combined tool output as one log artifact per generator.
func (r *Runner) writeLog(id string, combined []byte) (string, error) {
	if err := os.MkdirAll(r.logDir, 0o755); err != nil {
		return "", err
	}
	logPath := filepath.Join(r.logDir, id+".log")
	if err := os.WriteFile(logPath, combined, 0o644); err != nil {
		return logPath, err
	}
	return logPath, nil
}
