// Package cli implements the cratepatch command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratepatch/pkg/buildinfo"
	"github.com/matzehuels/cratepatch/pkg/config"
	"github.com/matzehuels/cratepatch/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cratepatch"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cratepatch injects a dependency into every vendored cargo crate",
		Long: `Cratepatch adds one dependency to a Rust project, vendors its dependency tree,
and then injects the same dependency into every vendored crate so the whole
tree builds against it. Vendored crates are isolated from the parent workspace
and their checksum ledgers are cleared so cargo accepts the edits.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./"+config.FileName+", then the user config dir)")

	root.AddCommand(c.patchCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.ledgerCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// preRun applies --verbose and attaches the logger to the command context.
func (c *CLI) preRun(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPatchHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig merges the config sources with the flags set on cmd.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, err := c.loadConfigFile(cmd)
	return cfg, err
}

// loadConfigFile is loadConfig that also returns the file it read, or "".
func (c *CLI) loadConfigFile(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, path, err := config.Load(config.LoadOptions{
		ConfigFile: c.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", path)
	}
	return cfg, path, nil
}
