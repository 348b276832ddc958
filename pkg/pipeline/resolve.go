package pipeline

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/manifest"
)

// ResolveRootManifest returns the absolute, symlink-free path of the root
// manifest. An empty path means Cargo.toml in the current directory.
//
// Failures are PATH_RESOLUTION errors and happen before anything is run.
func ResolveRootManifest(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodePathResolution, err, "determine working directory")
		}
		path = filepath.Join(cwd, manifest.FileName)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePathResolution, err, "resolve %s", path)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePathResolution, err, "resolve %s", abs)
	}
	if err := manifest.Resolve(canonical); err != nil {
		return "", err
	}
	return canonical, nil
}
