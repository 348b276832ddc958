package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratepatch/pkg/config"
	"github.com/matzehuels/cratepatch/pkg/pipeline"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cratepatch configuration",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configExcludeCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var global, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(global)
			if err != nil {
				return err
			}
			if err := config.WriteFile(path, config.DefaultConfig(), force); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			printNextStep("Preview the run", "cratepatch plan")
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "write to the user config directory instead of the current directory")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// configExcludeCommand creates the "config exclude" subcommand, an
// interactive picker over the current vendor tree.
func (c *CLI) configExcludeCommand() *cobra.Command {
	var manifestPath string
	var global bool

	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Choose excluded packages interactively from the vendor tree",
		Long: `Exclude lists every package in the existing vendor tree with the currently
excluded ones marked. Toggle packages with space and press enter to save the
selection as exclusions.names in the config file that was loaded (or
./` + config.FileName + ` when there is none). Other settings in the file are
left as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loaded, err := c.loadConfigFile(cmd)
			if err != nil {
				return err
			}
			root, err := pipeline.ResolveRootManifest(manifestPath)
			if err != nil {
				return err
			}
			opts, err := cfg.ToOptions()
			if err != nil {
				return err
			}
			plan, err := pipeline.NewPlan(root, opts)
			if err != nil {
				return err
			}
			if len(plan.Candidates) == 0 {
				printInfo("No vendored packages in %s", plan.VendorDir)
				return nil
			}

			p := tea.NewProgram(
				NewExclusionPickerModel(plan.Candidates, cfg.Exclusions.Names),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(cmd.ErrOrStderr()),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("exclusion picker: %w", err)
			}
			m := final.(ExclusionPickerModel)
			if !m.Confirmed {
				printInfo("Cancelled, configuration unchanged")
				return nil
			}

			path, err := excludeTarget(global, loaded)
			if err != nil {
				return err
			}
			names := m.Excluded()
			if err := config.SaveExclusions(path, names); err != nil {
				return err
			}
			printSuccess("Saved %d exclusions", len(names))
			printFile(path)
			return nil
		},
	}

	manifestPathFlag(cmd, &manifestPath)
	cmd.Flags().BoolVar(&global, "global", false, "save to the user config directory instead of the current directory")
	return cmd
}

// excludeTarget returns the file config exclude updates: the user config
// with --global, else the file the settings were loaded from.
func excludeTarget(global bool, loaded string) (string, error) {
	if global || loaded == "" {
		return configTarget(global)
	}
	return loaded, nil
}

// configTarget returns where init writes the config file.
func configTarget(global bool) (string, error) {
	if !global {
		return config.FileName, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName), nil
}
