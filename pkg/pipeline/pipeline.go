// Package pipeline implements the recursive patch-and-revendor run.
//
// # Architecture
//
// A run has a sequential root phase and a parallel nested phase:
//
//  1. Inject: cargo add the dependency into the root manifest
//  2. Vendor: cargo vendor the root into <root dir>/vendor
//  3. Discover: find every Cargo.toml in the vendor tree (depth two) and
//     drop the excluded packages
//  4. Patch: for each remaining manifest, isolate its workspace, inject the
//     dependency, and repair its checksum ledger
//
// Any failure in steps 1 to 3 aborts the run before a nested manifest is
// touched. Failures in step 4 are recorded per manifest in [Result] and
// never stop the other workers.
//
// # Usage
//
//	runner := pipeline.NewRunner(cargo.NewCLI("", 0), logger)
//	root, err := pipeline.ResolveRootManifest("")
//	result, err := runner.Run(ctx, root, pipeline.DefaultOptions())
//	for _, o := range result.Failures() {
//	    fmt.Println(o.Path, o.Step, o.Error)
//	}
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratepatch/pkg/cargo"
	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultDependency is atomic-core, renamed to core, from crates.io with the
// critical-section feature.
var DefaultDependency = cargo.Dependency{
	Name:     "atomic-core",
	Alias:    "core",
	Source:   cargo.CratesIO,
	Features: []string{"critical-section"},
}

// DefaultJobs is the worker pool size when none is configured.
func DefaultJobs() int { return runtime.NumCPU() }

// Step names the per-manifest operation an outcome refers to.
type Step string

const (
	StepIsolate Step = "isolate"
	StepInject  Step = "inject"
	StepRepair  Step = "repair"
)

// Status is the final state of a nested manifest.
type Status string

const (
	StatusPatched Status = "patched"
	StatusFailed  Status = "failed"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a run.
type Options struct {
	// Dependency is injected into the root and every nested manifest.
	Dependency cargo.Dependency `json:"dependency"`

	// Exclusions lists packages that are never patched. The zero value
	// excludes nothing; use DefaultOptions for the standard set.
	Exclusions vendor.ExclusionSet `json:"-"`

	// Jobs bounds the number of manifests patched concurrently.
	Jobs int `json:"jobs,omitempty"`

	// VendorDir is the vendor directory name, relative to the root manifest.
	VendorDir string `json:"vendor_dir,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options of a stock run.
func DefaultOptions() Options {
	return Options{
		Dependency: DefaultDependency,
		Exclusions: vendor.DefaultExclusionSet(),
		Jobs:       DefaultJobs(),
		VendorDir:  vendor.DefaultDir,
	}
}

// ValidateAndSetDefaults checks the dependency and fills unset fields.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Dependency.Validate(); err != nil {
		return err
	}
	if o.Jobs < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "jobs must not be negative, got %d", o.Jobs)
	}
	if o.Jobs == 0 {
		o.Jobs = DefaultJobs()
	}
	if o.VendorDir == "" {
		o.VendorDir = vendor.DefaultDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Outcome records what happened to one nested manifest.
type Outcome struct {
	Path    string        `json:"path"`
	Package string        `json:"package"`
	Status  Status        `json:"status"`
	Step    Step          `json:"step,omitempty"`  // failing step, empty on success
	Error   string        `json:"error,omitempty"` // rendered Err
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"elapsed_ns"`

	// WorkspaceAppended is false when the manifest already declared [workspace].
	WorkspaceAppended bool `json:"workspace_appended"`
	// LedgerCleared counts the checksum entries removed.
	LedgerCleared int `json:"ledger_cleared"`
}

// Result is the report of a completed run.
type Result struct {
	RunID        string             `json:"run_id"`
	RootManifest string             `json:"root_manifest"`
	VendorDir    string             `json:"vendor_dir"`
	Dependency   string             `json:"dependency"`
	Outcomes     []Outcome          `json:"outcomes"`
	Excluded     []vendor.Candidate `json:"excluded"`
	Stats        Stats              `json:"stats"`
}

// Stats contains run statistics.
type Stats struct {
	Discovered int           `json:"discovered"`
	Patched    int           `json:"patched"`
	Failed     int           `json:"failed"`
	Excluded   int           `json:"excluded"`
	RootTime   time.Duration `json:"root_ns"`
	VendorTime time.Duration `json:"vendor_ns"`
	PatchTime  time.Duration `json:"patch_ns"`
	TotalTime  time.Duration `json:"total_ns"`
}

// Failures returns the outcomes that did not patch cleanly.
func (r *Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}
