// Package ledger reads and repairs the .cargo-checksum.json files that cargo
// vendor writes next to every vendored package.
//
// Cargo refuses to build a vendored package whose files no longer match the
// recorded checksums. After a manifest has been patched its digest is stale,
// so [Repair] empties the per-file table while leaving the package checksum
// and any other fields intact. Cargo skips per-file verification when the
// table is empty.
package ledger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

// FileName is the ledger file cargo vendor places in each package directory.
const FileName = ".cargo-checksum.json"

// Ledger is a decoded checksum file.
//
// Files maps relative paths to sha256 digests. Package is the digest of the
// original .crate archive and is nil for git and path sources. The raw
// top-level object is kept so that unknown keys survive a rewrite.
type Ledger struct {
	Path    string
	Files   map[string]string
	Package *string

	fields map[string]json.RawMessage
}

// PathFor returns the ledger location for the package owning manifestPath.
func PathFor(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), FileName)
}

// Read decodes the ledger at path.
func Read(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read checksum ledger %s", path)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode checksum ledger %s", path)
	}
	if fields == nil {
		return nil, errors.New(errors.ErrCodeParse, "checksum ledger %s is not a JSON object", path)
	}

	l := &Ledger{Path: path, fields: fields}
	if raw, ok := fields["files"]; ok {
		if err := json.Unmarshal(raw, &l.Files); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "decode files in %s", path)
		}
	}
	if raw, ok := fields["package"]; ok {
		if err := json.Unmarshal(raw, &l.Package); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "decode package in %s", path)
		}
	}
	return l, nil
}

// Verified reports whether cargo will check individual file digests.
func (l *Ledger) Verified() bool { return len(l.Files) > 0 }

// FileNames returns the tracked paths in sorted order.
func (l *Ledger) FileNames() []string {
	names := make([]string, 0, len(l.Files))
	for name := range l.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the names of all top-level fields, sorted.
func (l *Ledger) Fields() []string {
	names := make([]string, 0, len(l.fields))
	for name := range l.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear empties the file table in memory. Call Write to persist it.
func (l *Ledger) Clear() {
	l.Files = map[string]string{}
	l.fields["files"] = json.RawMessage(`{}`)
}

// Write truncates the ledger file and writes the current contents.
func (l *Ledger) Write() error {
	data, err := json.Marshal(l.fields)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode checksum ledger %s", l.Path)
	}
	// Preserve the original mode; cargo vendor writes 0644.
	mode := os.FileMode(0o644)
	if info, err := os.Stat(l.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(l.Path, data, mode); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write checksum ledger %s", l.Path)
	}
	return nil
}

// Repair clears the file table of the ledger that sits next to manifestPath
// and rewrites it in place. It returns the number of entries dropped.
//
// A missing ledger is an IO_ERROR wrapping fs.ErrNotExist. Content that is not
// a JSON object is a PARSE_ERROR. Either way the file is left untouched.
func Repair(manifestPath string) (int, error) {
	l, err := Read(PathFor(manifestPath))
	if err != nil {
		return 0, err
	}
	dropped := len(l.Files)
	l.Clear()
	if err := l.Write(); err != nil {
		return 0, err
	}
	return dropped, nil
}

// Indent renders the raw ledger for display.
func (l *Ledger) Indent() ([]byte, error) {
	raw, err := json.Marshal(l.fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
