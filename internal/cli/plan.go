package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratepatch/pkg/pipeline"
	"github.com/matzehuels/cratepatch/pkg/report"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var manifestPath, format, output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which vendored packages a patch run would touch",
		Long: `Plan inspects an existing vendor tree and lists every package a patch run would
patch or skip. It does not run cargo and does not modify any file.`,
		Example: `  cratepatch plan
  cratepatch plan --format json
  cratepatch plan --format svg -o plan.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			root, err := pipeline.ResolveRootManifest(manifestPath)
			if err != nil {
				return err
			}
			opts, err := buildOptions(cmd.Context(), cfg, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			plan, err := pipeline.NewPlan(root, opts)
			if err != nil {
				return err
			}
			return writePlan(cmd, plan, f, output)
		},
	}

	manifestPathFlag(cmd, &manifestPath)
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "output format: "+strings.Join(formatList(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	addDependencyFlags(cmd.Flags())
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatList(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func writePlan(cmd *cobra.Command, plan *pipeline.Plan, format report.Format, output string) error {
	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := report.WritePlan(cmd.Context(), w, plan, format); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Planned %d packages, %d excluded", len(plan.Patchable()), len(plan.Excluded()))
		printFile(output)
	}
	return nil
}

func formatList() []string {
	names := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		names[i] = string(f)
	}
	return names
}
