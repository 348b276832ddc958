package pipeline

import (
	"path/filepath"

	"github.com/matzehuels/cratepatch/pkg/manifest"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// Plan is a dry run over an existing vendor tree: what a run would patch
// and what it would leave alone, without running cargo or touching files.
type Plan struct {
	RootManifest string             `json:"root_manifest"`
	VendorDir    string             `json:"vendor_dir"`
	Dependency   string             `json:"dependency"`
	Exclusions   []string           `json:"exclusions"`
	Candidates   []vendor.Candidate `json:"candidates"`

	// Injected lists the manifests, by path, that already declare the
	// dependency, typically left over from an earlier run.
	Injected []string `json:"injected,omitempty"`
}

// NewPlan discovers the manifests under the vendor directory of rootManifest.
func NewPlan(rootManifest string, opts Options) (*Plan, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	dir := filepath.Join(filepath.Dir(rootManifest), opts.VendorDir)
	candidates, err := vendor.Discover(dir, opts.Exclusions)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		RootManifest: rootManifest,
		VendorDir:    dir,
		Dependency:   opts.Dependency.String(),
		Exclusions:   opts.Exclusions.Names(),
		Candidates:   candidates,
	}
	local := opts.Dependency.LocalName()
	for _, c := range p.Patchable() {
		// Unreadable manifests fail at patch time; the plan only reports.
		if m, err := manifest.Read(c.Path); err == nil && m.HasDependency(local) {
			p.Injected = append(p.Injected, c.Path)
		}
	}
	return p, nil
}

// IsInjected reports whether the manifest at path already declares the
// dependency.
func (p *Plan) IsInjected(path string) bool {
	for _, q := range p.Injected {
		if q == path {
			return true
		}
	}
	return false
}

// Patchable returns the candidates a run would patch.
func (p *Plan) Patchable() []vendor.Candidate { return vendor.Patchable(p.Candidates) }

// Excluded returns the candidates a run would skip.
func (p *Plan) Excluded() []vendor.Candidate {
	var out []vendor.Candidate
	for _, c := range p.Candidates {
		if c.Excluded {
			out = append(out, c)
		}
	}
	return out
}
