package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratepatch/pkg/config"
	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/integrations/crates"
	"github.com/matzehuels/cratepatch/pkg/pipeline"
	"github.com/matzehuels/cratepatch/pkg/report"
)

// patchCommand creates the patch command.
func (c *CLI) patchCommand() *cobra.Command {
	var manifestPath, reportPath, reportFormat string

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Inject the dependency into the root manifest and every vendored crate",
		Long: `Patch runs four stages against the root manifest:

  1. cargo add the dependency to the root manifest
  2. cargo vendor into <root>/vendor
  3. find every vendored Cargo.toml, skipping excluded packages
  4. for each one: mark it as its own workspace, cargo add the dependency,
     and clear its .cargo-checksum.json file list

A failure in stages 1 to 3 aborts the run. Failures in stage 4 are reported per
package and do not stop the others.`,
		Example: `  # Inject the default atomic-core (as core) into ./Cargo.toml and its vendor tree
  cratepatch patch

  # Another project, eight workers, and a JSON report
  cratepatch patch --manifest-path ../firmware/Cargo.toml -j 8 --report patch.json

  # Draw the outcome as a graph
  cratepatch patch --report patch.svg --report-format svg

  # Inject a git crate and exclude its own dependencies automatically
  cratepatch patch --dependency shim --git https://example.com/shim.git --resolve-exclusions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(reportFormat)
			if err != nil {
				return err
			}
			return c.runPatch(cmd, manifestPath, reportPath, format)
		},
	}

	manifestPathFlag(cmd, &manifestPath)
	cmd.Flags().StringVar(&reportPath, "report", "", "write the run report to this file")
	cmd.Flags().StringVar(&reportFormat, "report-format", string(report.FormatJSON), "report format: "+strings.Join(formatList(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("report-format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatList(), cobra.ShellCompDirectiveNoFileComp
	})
	addDependencyFlags(cmd.Flags())
	addCargoFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runPatch(cmd *cobra.Command, manifestPath, reportPath string, format report.Format) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	tool := cfg.CargoCLI()
	if !tool.IsInstalled() {
		return errors.New(errors.ErrCodeInvalidConfig, "cargo executable %q not found; install Rust or pass --cargo", tool.Binary)
	}
	// cargo vendor prints the [source] snippet for .cargo/config.toml on stdout.
	tool.Stdout = cmd.OutOrStdout()
	tool.Stderr = cmd.ErrOrStderr()

	root, err := pipeline.ResolveRootManifest(manifestPath)
	if err != nil {
		return err
	}
	opts, err := buildOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}

	printInfo("Patching %s with %s", root, opts.Dependency.String())
	prog := newProgress(logger)
	result, runErr := pipeline.NewRunner(tool, logger).Run(ctx, root, opts)

	// A cancelled run still has a partial result worth keeping.
	if result != nil && reportPath != "" {
		if err := writeReport(context.WithoutCancel(ctx), reportPath, result, format); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	prog.done(fmt.Sprintf("Patched %d of %d vendored packages", result.Stats.Patched, result.Stats.Patched+result.Stats.Failed))
	printRunSummary(result)
	if reportPath != "" {
		printFile(reportPath)
	}
	return nil
}

// buildOptions converts cfg to pipeline options, resolving exclusions from
// crates.io when configured.
func buildOptions(ctx context.Context, cfg *config.Config, logger *log.Logger) (pipeline.Options, error) {
	opts, err := cfg.ToOptions()
	if err != nil {
		return opts, err
	}
	opts.Logger = logger
	if !cfg.Exclusions.Resolve {
		return opts, nil
	}

	cache, err := cfg.NewCache()
	if err != nil {
		logger.Warn("crates.io cache unavailable, fetching without it", "err", err)
		cache = nil
	}
	spinner := newSpinnerWithContext(ctx, "Resolving exclusions from crates.io")
	spinner.Start()
	set, err := pipeline.ResolveExclusions(ctx, crates.NewClient(cache), opts.Dependency, opts.Exclusions, cfg.Exclusions.Depth, logger)
	if err != nil {
		spinner.StopWithError("Could not resolve exclusions")
		return opts, fmt.Errorf("resolve exclusions: %w", err)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Resolved %d exclusions", set.Len()))
	logger.Debug("exclusions", "names", set.Names())
	opts.Exclusions = set
	return opts, nil
}

func writeReport(ctx context.Context, path string, result *pipeline.Result, format report.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteResult(ctx, f, result, format); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
