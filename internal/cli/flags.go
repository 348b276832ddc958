package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addDependencyFlags registers the flags that override the [dependency] and
// [exclusions] config sections. Their defaults are zero because config.Load
// only applies flags the user set; the effective defaults live in the config.
func addDependencyFlags(f *pflag.FlagSet) {
	f.String("dependency", "", "crate to inject (default atomic-core)")
	f.String("rename", "", "local name of the injected crate (default core)")
	f.String("git", "", "inject from this git repository instead of a registry")
	f.String("branch", "", "git branch to use with --git")
	f.String("registry", "", "alternate registry to inject from")
	f.StringSlice("features", nil, "features to enable on the injected crate")
	f.StringSlice("exclude", nil, "packages never patched (replaces the configured list)")
	f.Bool("resolve-exclusions", false, "also exclude the injected crate's crates.io dependencies")
	f.String("vendor-dir", "", "vendor directory relative to the root manifest (default vendor)")
}

// addCargoFlags registers the flags that control cargo subprocesses.
func addCargoFlags(f *pflag.FlagSet) {
	f.IntP("jobs", "j", 0, "manifests patched concurrently (default: number of CPUs)")
	f.String("cargo", "", "cargo executable (default cargo on PATH)")
	f.Duration("timeout", 0, "limit for each cargo invocation, e.g. 10m (default none)")
}

// manifestPathFlag registers --manifest-path on cmd.
func manifestPathFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVar(p, "manifest-path", "", "path to the root Cargo.toml (default ./Cargo.toml)")
	_ = cmd.MarkFlagFilename("manifest-path", "toml")
}
