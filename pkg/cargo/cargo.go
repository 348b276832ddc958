package cargo

import (
	"bytes"
	"context"
	goerrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

// DefaultBinary is the cargo executable looked up on PATH.
const DefaultBinary = "cargo"

// Tool is the narrow surface of cargo the patch pipeline depends on.
type Tool interface {
	// Add injects dep into the manifest at manifestPath.
	Add(ctx context.Context, manifestPath string, dep Dependency) error
	// Vendor materializes the dependencies of manifestPath into vendorDir.
	Vendor(ctx context.Context, manifestPath, vendorDir string) error
}

// CLI runs cargo as a subprocess.
type CLI struct {
	// Binary is the cargo executable. Defaults to DefaultBinary.
	Binary string
	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration
	// Stdout and Stderr receive cargo vendor's output as it runs.
	// Nil values default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCLI returns a CLI that invokes binary (DefaultBinary if empty).
func NewCLI(binary string, timeout time.Duration) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLI{Binary: binary, Timeout: timeout}
}

// Ensure CLI implements Tool.
var _ Tool = (*CLI)(nil)

// AddArgs builds the cargo add argument vector for dep.
// Optional flags are only emitted when their value is non-empty.
func AddArgs(manifestPath string, dep Dependency) []string {
	args := []string{"add", dep.Name, "--manifest-path", manifestPath, "--no-optional"}

	switch dep.Source.Kind {
	case SourceGit:
		args = append(args, "--git", dep.Source.URL)
		if dep.Source.Branch != "" {
			args = append(args, "--branch", dep.Source.Branch)
		}
	default:
		if dep.Source.Registry != "" {
			args = append(args, "--registry", dep.Source.Registry)
		}
	}

	if dep.Alias != "" {
		args = append(args, "--rename", dep.Alias)
	}

	if len(dep.Features) > 0 {
		args = append(args, "--features", strings.Join(dep.Features, ","))
	}
	return args
}

// DefaultVendorDir is the directory cargo vendor writes to when no path is given.
const DefaultVendorDir = "vendor"

// VendorArgs builds the cargo vendor argument vector. The destination is
// only passed when it differs from cargo's default.
func VendorArgs(manifestPath, dest string) []string {
	args := []string{"vendor", "--manifest-path", manifestPath}
	if dest != "" && dest != DefaultVendorDir {
		args = append(args, dest)
	}
	return args
}

// Add runs cargo add against a single manifest.
// Stdout and stderr are captured; stderr is returned in the error on failure.
func (c *CLI) Add(ctx context.Context, manifestPath string, dep Dependency) error {
	var stderr bytes.Buffer
	err := c.run(ctx, "", io.Discard, &stderr, AddArgs(manifestPath, dep)...)
	if err != nil {
		return failure("cargo add", err, &stderr, "add %s to %s", dep.Name, manifestPath)
	}
	return nil
}

// Vendor runs cargo vendor from the parent of vendorDir, so the tree lands
// in vendorDir. The parent is created first when missing. Output is streamed
// while also capturing stderr for the error.
func (c *CLI) Vendor(ctx context.Context, manifestPath, vendorDir string) error {
	dir, dest := filepath.Split(filepath.Clean(vendorDir))
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create vendor parent %s", dir)
		}
	}
	var stderr bytes.Buffer
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	errOut := c.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}

	err := c.run(ctx, dir, stdout, io.MultiWriter(errOut, &stderr), VendorArgs(manifestPath, dest)...)
	if err != nil {
		return failure("cargo vendor", err, &stderr, "vendor %s into %s", manifestPath, vendorDir)
	}
	return nil
}

// run executes cargo in dir with the given output sinks.
func (c *CLI) run(ctx context.Context, dir string, stdout, stderr io.Writer, args ...string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	binary := c.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// failure converts a subprocess error into an EXECUTION_FAILED error.
func failure(command string, err error, stderr *bytes.Buffer, format string, args ...any) error {
	var exitErr *exec.ExitError
	if goerrors.As(err, &exitErr) {
		err = &errors.ExecutionError{
			Command:  command,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return errors.Wrap(errors.ErrCodeExecution, err, format, args...)
}

// IsInstalled reports whether the cargo binary can be found.
func (c *CLI) IsInstalled() bool {
	binary := c.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	_, err := exec.LookPath(binary)
	return err == nil
}
