package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratepatch/pkg/cargo"
	"github.com/matzehuels/cratepatch/pkg/ledger"
	"github.com/matzehuels/cratepatch/pkg/manifest"
	"github.com/matzehuels/cratepatch/pkg/observability"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// Runner executes patch runs against a cargo implementation.
//
// The Runner holds no per-run state, so one Runner may serve several runs
// concurrently as long as they target different root manifests.
type Runner struct {
	Tool   cargo.Tool
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(tool cargo.Tool, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Tool: tool, Logger: logger}
}

// Run patches rootManifest and every package vendored beneath it.
//
// The returned error is non-nil only when the root phase fails, the vendor
// tree cannot be read, or ctx is cancelled. Per-manifest failures are
// reported in Result and logged. On cancellation the partial Result is
// returned along with ctx.Err().
func (r *Runner) Run(ctx context.Context, rootManifest string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	hooks := observability.Patch()
	start := time.Now()

	result := &Result{
		RunID:        uuid.NewString(),
		RootManifest: rootManifest,
		VendorDir:    filepath.Join(filepath.Dir(rootManifest), opts.VendorDir),
		Dependency:   opts.Dependency.String(),
	}
	logger = logger.With("run", result.RunID[:8])

	// Stage 1: Inject into the root
	hooks.OnRootStart(ctx, rootManifest)
	rootStart := time.Now()
	if err := r.Tool.Add(ctx, rootManifest, opts.Dependency); err != nil {
		return nil, fmt.Errorf("inject into root manifest: %w", err)
	}
	result.Stats.RootTime = time.Since(rootStart)
	logger.Info("injected dependency", "manifest", rootManifest, "dependency", result.Dependency)

	// Stage 2: Vendor
	vendorStart := time.Now()
	err := r.Tool.Vendor(ctx, rootManifest, result.VendorDir)
	result.Stats.VendorTime = time.Since(vendorStart)
	hooks.OnVendorComplete(ctx, result.VendorDir, result.Stats.VendorTime, err)
	if err != nil {
		return nil, fmt.Errorf("vendor: %w", err)
	}
	logger.Info("vendored dependencies", "dir", result.VendorDir, "duration", result.Stats.VendorTime)

	// Stage 3: Discover
	candidates, err := vendor.Discover(result.VendorDir, opts.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	targets := vendor.Patchable(candidates)
	for _, c := range candidates {
		if c.Excluded {
			result.Excluded = append(result.Excluded, c)
			logger.Debug("skipping excluded package", "package", c.Name(), "reason", c.Reason)
		}
	}
	result.Stats.Discovered = len(candidates)
	result.Stats.Excluded = len(result.Excluded)
	logger.Info("discovered manifests", "total", len(candidates), "excluded", len(result.Excluded))

	// Stage 4: Patch in parallel
	patchStart := time.Now()
	result.Outcomes, err = r.patchAll(ctx, targets, opts, logger)
	result.Stats.PatchTime = time.Since(patchStart)
	for _, o := range result.Outcomes {
		if o.Status == StatusPatched {
			result.Stats.Patched++
		} else {
			result.Stats.Failed++
		}
	}
	result.Stats.TotalTime = time.Since(start)
	hooks.OnRunComplete(ctx, result.Stats.Patched, result.Stats.Failed, result.Stats.Excluded, result.Stats.TotalTime)
	if err != nil {
		return result, err
	}

	logger.Info("patched vendored packages",
		"patched", result.Stats.Patched,
		"failed", result.Stats.Failed,
		"duration", result.Stats.PatchTime)
	return result, nil
}

// patchAll runs patchOne for every target on a pool of opts.Jobs workers.
// Outcomes are returned sorted by path. The only error is ctx.Err().
func (r *Runner) patchAll(ctx context.Context, targets []vendor.Candidate, opts Options, logger *log.Logger) ([]Outcome, error) {
	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(targets))
	)

	g := new(errgroup.Group)
	g.SetLimit(opts.Jobs)
	for _, c := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			o := r.patchOne(ctx, c, opts.Dependency, logger)
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Path < outcomes[j].Path })
	return outcomes, ctx.Err()
}

// patchOne isolates, injects and repairs a single manifest, stopping at the
// first failing step. A manifest that was isolated but could not be injected
// still has its ledger repaired, because the appended [workspace] table alone
// already invalidates the recorded Cargo.toml digest.
func (r *Runner) patchOne(ctx context.Context, c vendor.Candidate, dep cargo.Dependency, logger *log.Logger) Outcome {
	hooks := observability.Patch()
	hooks.OnManifestStart(ctx, c.Path)
	start := time.Now()

	o := Outcome{Path: c.Path, Package: c.Name(), Status: StatusPatched}
	fail := func(step Step, err error) Outcome {
		o.Status, o.Step, o.Err, o.Error = StatusFailed, step, err, err.Error()
		o.Elapsed = time.Since(start)
		logger.Error("patch failed", "manifest", c.Path, "step", step, "err", err)
		hooks.OnManifestComplete(ctx, c.Path, string(step), o.Elapsed, err)
		return o
	}

	if err := ctx.Err(); err != nil {
		return fail(StepIsolate, err)
	}
	appended, err := manifest.IsolateWorkspace(c.Path)
	if err != nil {
		return fail(StepIsolate, err)
	}
	o.WorkspaceAppended = appended

	if err := r.Tool.Add(ctx, c.Path, dep); err != nil {
		if appended {
			cleared, rerr := ledger.Repair(c.Path)
			if rerr != nil {
				logger.Warn("ledger repair after failed injection", "manifest", c.Path, "err", rerr)
			}
			o.LedgerCleared = cleared
		}
		return fail(StepInject, err)
	}

	cleared, err := ledger.Repair(c.Path)
	if err != nil {
		return fail(StepRepair, err)
	}
	o.LedgerCleared = cleared

	o.Elapsed = time.Since(start)
	logger.Debug("patched", "package", o.Package, "ledger_cleared", cleared, "duration", o.Elapsed)
	hooks.OnManifestComplete(ctx, c.Path, "", o.Elapsed, nil)
	return o
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
