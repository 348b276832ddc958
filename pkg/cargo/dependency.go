package cargo

import (
	"strings"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

// SourceKind selects where cargo resolves an injected dependency from.
type SourceKind string

const (
	// SourceRegistry resolves from crates.io or a named alternate registry.
	SourceRegistry SourceKind = "registry"
	// SourceGit resolves from a git repository URL.
	SourceGit SourceKind = "git"
)

// Source describes the origin of a dependency.
//
// For SourceRegistry, Registry optionally names an alternate registry
// configured in .cargo/config.toml; empty means crates.io.
// For SourceGit, URL is the repository and Branch optionally pins a branch.
type Source struct {
	Kind     SourceKind
	URL      string
	Branch   string
	Registry string
}

// CratesIO is the default registry source.
var CratesIO = Source{Kind: SourceRegistry}

// Git returns a git source for url.
func Git(url string) Source {
	return Source{Kind: SourceGit, URL: url}
}

// Dependency is the crate injected into every patched manifest.
// It is treated as immutable once constructed.
type Dependency struct {
	Name     string   // crate name as published
	Alias    string   // local name (cargo add --rename); empty for none
	Source   Source   // where cargo fetches the crate from
	Features []string // features to enable, in order
}

// LocalName returns the name the dependency is visible under in a manifest's
// [dependencies] table: the alias if set, the crate name otherwise.
func (d Dependency) LocalName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

// String renders the dependency the way a user would type it for cargo add.
func (d Dependency) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.Alias != "" {
		b.WriteString(" as ")
		b.WriteString(d.Alias)
	}
	if len(d.Features) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(d.Features, ","))
		b.WriteString("]")
	}
	if d.Source.Kind == SourceGit {
		b.WriteString(" from ")
		b.WriteString(d.Source.URL)
	} else if d.Source.Registry != "" {
		b.WriteString(" from registry ")
		b.WriteString(d.Source.Registry)
	}
	return b.String()
}

// Validate checks the dependency before it is handed to cargo.
func (d Dependency) Validate() error {
	if err := errors.ValidateCratesPackageName(d.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDependency, err, "dependency name")
	}
	if d.Alias != "" {
		if err := errors.ValidateCratesPackageName(d.Alias); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDependency, err, "dependency alias")
		}
	}
	for _, f := range d.Features {
		if f == "" || strings.ContainsAny(f, ", \t\n") {
			return errors.New(errors.ErrCodeInvalidDependency, "invalid feature name %q", f)
		}
	}

	switch d.Source.Kind {
	case SourceRegistry, "":
		if d.Source.URL != "" {
			return errors.New(errors.ErrCodeInvalidDependency, "registry source cannot carry a git URL")
		}
	case SourceGit:
		if err := errors.ValidateGitURL(d.Source.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDependency, err, "dependency source")
		}
		if d.Source.Registry != "" {
			return errors.New(errors.ErrCodeInvalidDependency, "git source cannot name a registry")
		}
	default:
		return errors.New(errors.ErrCodeInvalidDependency, "unknown source kind %q (must be registry or git)", d.Source.Kind)
	}
	return nil
}
