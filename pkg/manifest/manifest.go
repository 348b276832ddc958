package manifest

import (
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

// FileName is the name cargo gives every package manifest.
const FileName = "Cargo.toml"

// Manifest is the subset of a Cargo.toml the patcher needs to reason about.
type Manifest struct {
	Path string

	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`

	meta toml.MetaData
}

// Read loads and decodes the manifest at path.
// A missing or unreadable file is an IO_ERROR; invalid TOML is a PARSE_ERROR.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read manifest %s", path)
	}
	return Parse(path, data)
}

// Parse decodes manifest content; path is only used for error messages.
func Parse(path string, data []byte) (*Manifest, error) {
	m := &Manifest{Path: path}
	meta, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode manifest %s", path)
	}
	m.meta = meta
	return m, nil
}

// Name returns the declared [package].name, or empty for virtual manifests.
func (m *Manifest) Name() string { return m.Package.Name }

// HasWorkspace reports whether the manifest declares a [workspace] table.
func (m *Manifest) HasWorkspace() bool {
	return m.meta.IsDefined("workspace")
}

// HasDependency reports whether name appears in [dependencies].
// name is the local (possibly renamed) key, not the published crate name.
func (m *Manifest) HasDependency(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// Resolve checks that path names an existing regular file called Cargo.toml.
func Resolve(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		code := errors.ErrCodeIO
		if os.IsNotExist(err) {
			code = errors.ErrCodePathResolution
		}
		return errors.Wrap(code, err, "manifest %s", path)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrap(errors.ErrCodePathResolution, fs.ErrInvalid, "manifest %s is not a regular file", path)
	}
	if !strings.EqualFold(info.Name(), FileName) {
		return errors.New(errors.ErrCodePathResolution, "manifest %s is not named %s", path, FileName)
	}
	return nil
}
