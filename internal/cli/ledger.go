package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratepatch/pkg/ledger"
	"github.com/matzehuels/cratepatch/pkg/manifest"
)

// ledgerCommand creates the checksum ledger command.
func (c *CLI) ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or clear vendored checksum ledgers",
	}

	cmd.AddCommand(c.ledgerShowCommand())
	cmd.AddCommand(c.ledgerClearCommand())

	return cmd
}

// ledgerShowCommand creates the "ledger show" subcommand.
func (c *CLI) ledgerShowCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <package-dir>",
		Short: "Show the checksum ledger of a vendored package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ledger.Read(ledgerPath(args[0]))
			if err != nil {
				return err
			}

			if raw {
				data, err := l.Indent()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			printKeyValue("Ledger", l.Path)
			pkg := "none (git or path source)"
			if l.Package != nil {
				pkg = *l.Package
			}
			printKeyValue("Package", pkg)
			printKeyValue("Files", fmt.Sprintf("%d", len(l.Files)))
			printKeyValue("Fields", strings.Join(l.Fields(), ", "))
			if l.Verified() {
				printWarning("cargo verifies file digests; patching this package requires clearing them")
			} else {
				printSuccess("File digests cleared; cargo accepts local edits")
			}
			if loggerFromContext(cmd.Context()).GetLevel() <= LogDebug {
				for _, name := range l.FileNames() {
					printDetail("%s  %s", l.Files[name], name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the ledger JSON")
	return cmd
}

// ledgerClearCommand creates the "ledger clear" subcommand.
func (c *CLI) ledgerClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <package-dir>...",
		Short: "Clear the file digests of one or more vendored packages",
		Long: `Clear empties the "files" table of each package's .cargo-checksum.json so cargo
accepts local edits to the package. The "package" digest and any other fields
are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, arg := range args {
				n, err := ledger.Repair(manifestPathFor(arg))
				if err != nil {
					printError("%s: %v", arg, err)
					failed++
					continue
				}
				printSuccess("Cleared %d entries in %s", n, arg)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d ledgers could not be cleared", failed, len(args))
			}
			return nil
		},
	}
}

// ledgerPath accepts a package directory or a ledger file path.
func ledgerPath(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, ledger.FileName)
	}
	return arg
}

// manifestPathFor maps a package directory or ledger path to the manifest the
// ledger belongs to, which is what ledger.Repair expects.
func manifestPathFor(arg string) string {
	return filepath.Join(filepath.Dir(ledgerPath(arg)), manifest.FileName)
}
