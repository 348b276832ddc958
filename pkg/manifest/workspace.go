package manifest

import (
	"os"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

// WorkspaceDeclaration is appended to a nested manifest so cargo treats the
// package as the root of its own workspace.
const WorkspaceDeclaration = "\n[workspace]\n"

// IsolateWorkspace appends an empty [workspace] table to the manifest at
// path, so that patching a vendored crate never folds it into an enclosing
// workspace.
//
// The append is skipped when the manifest already declares [workspace],
// which keeps reruns over the same vendor tree from stacking duplicate
// tables. appended reports whether the file was modified.
func IsolateWorkspace(path string) (appended bool, err error) {
	m, err := Read(path)
	if err != nil {
		return false, err
	}
	if m.HasWorkspace() {
		return false, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "open manifest %s for append", path)
	}
	if _, err := f.WriteString(WorkspaceDeclaration); err != nil {
		_ = f.Close()
		return false, errors.Wrap(errors.ErrCodeIO, err, "append workspace to %s", path)
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "close manifest %s", path)
	}
	return true, nil
}
