package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/cratepatch/pkg/cargo"
	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/httputil"
	"github.com/matzehuels/cratepatch/pkg/integrations"
	"github.com/matzehuels/cratepatch/pkg/pipeline"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// Duration is a time.Duration written as "30s" or "24h0m0s" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type (
	// Config is the merged cratepatch configuration.
	Config struct {
		// Jobs bounds concurrent manifest patching. Zero means one per CPU.
		Jobs int `mapstructure:"jobs" toml:"jobs"`
		// VendorDir is relative to the root manifest's directory.
		VendorDir  string           `mapstructure:"vendor_dir" toml:"vendor_dir"`
		Dependency DependencyConfig `mapstructure:"dependency" toml:"dependency"`
		Exclusions ExclusionsConfig `mapstructure:"exclusions" toml:"exclusions"`
		Cargo      CargoConfig      `mapstructure:"cargo" toml:"cargo"`
		Cache      CacheConfig      `mapstructure:"cache" toml:"cache"`
	}

	// DependencyConfig describes the injected crate.
	DependencyConfig struct {
		Name     string   `mapstructure:"name" toml:"name"`
		Alias    string   `mapstructure:"alias" toml:"alias"`
		Source   string   `mapstructure:"source" toml:"source"` // "registry" or "git"
		URL      string   `mapstructure:"url" toml:"url"`
		Branch   string   `mapstructure:"branch" toml:"branch"`
		Registry string   `mapstructure:"registry" toml:"registry"`
		Features []string `mapstructure:"features" toml:"features"`
	}

	// ExclusionsConfig lists packages that are never patched.
	ExclusionsConfig struct {
		Names []string `mapstructure:"names" toml:"names"`
		// Resolve adds the injected crate's crates.io dependency closure.
		Resolve bool `mapstructure:"resolve" toml:"resolve"`
		Depth   int  `mapstructure:"depth" toml:"depth"`
	}

	// CargoConfig selects and bounds the cargo subprocess.
	CargoConfig struct {
		Binary  string   `mapstructure:"binary" toml:"binary"`
		Timeout Duration `mapstructure:"timeout" toml:"timeout"` // zero means no limit
	}

	// CacheConfig controls the crates.io response cache.
	CacheConfig struct {
		TTL Duration `mapstructure:"ttl" toml:"ttl"`
	}
)

// DefaultConfig returns the configuration of a stock run.
func DefaultConfig() *Config {
	dep := pipeline.DefaultDependency
	return &Config{
		Jobs:      0,
		VendorDir: vendor.DefaultDir,
		Dependency: DependencyConfig{
			Name:     dep.Name,
			Alias:    dep.Alias,
			Source:   string(cargo.SourceRegistry),
			Features: append([]string(nil), dep.Features...),
		},
		Exclusions: ExclusionsConfig{
			Names: append([]string(nil), vendor.DefaultExclusions...),
			Depth: pipeline.DefaultResolveDepth,
		},
		Cargo: CargoConfig{Binary: cargo.DefaultBinary},
		Cache: CacheConfig{TTL: Duration(integrations.DefaultCacheTTL)},
	}
}

// normalize trims list entries, drops blanks left by comma-split env values,
// and treats a git URL as selecting the git source.
func (c *Config) normalize() {
	c.Dependency.Features = trimAll(c.Dependency.Features)
	c.Exclusions.Names = trimAll(c.Exclusions.Names)
	c.Dependency.Source = strings.ToLower(strings.TrimSpace(c.Dependency.Source))
	switch {
	case c.Dependency.URL != "":
		c.Dependency.Source = string(cargo.SourceGit)
	case c.Dependency.Source == "":
		c.Dependency.Source = string(cargo.SourceRegistry)
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "jobs must not be negative, got %d", c.Jobs)
	}
	if c.VendorDir == "" || filepath.IsAbs(c.VendorDir) {
		return errors.New(errors.ErrCodeInvalidConfig, "vendor_dir must be a relative path, got %q", c.VendorDir)
	}
	if clean := filepath.Clean(c.VendorDir); clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.New(errors.ErrCodeInvalidConfig, "vendor_dir must stay below the root manifest, got %q", c.VendorDir)
	}
	if c.Exclusions.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "exclusions.depth must not be negative, got %d", c.Exclusions.Depth)
	}
	if c.Cargo.Binary == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cargo.binary must not be empty")
	}
	if c.Cargo.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cargo.timeout must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if _, err := c.Dependency.ToDependency(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "dependency")
	}
	return nil
}

// ToDependency builds and validates the cargo dependency.
func (d DependencyConfig) ToDependency() (cargo.Dependency, error) {
	dep := cargo.Dependency{
		Name:     d.Name,
		Alias:    d.Alias,
		Features: d.Features,
		Source: cargo.Source{
			Kind:     cargo.SourceKind(d.Source),
			URL:      d.URL,
			Branch:   d.Branch,
			Registry: d.Registry,
		},
	}
	if err := dep.Validate(); err != nil {
		return cargo.Dependency{}, err
	}
	return dep, nil
}

// ToOptions converts the config to pipeline options. Call Validate first.
func (c *Config) ToOptions() (pipeline.Options, error) {
	dep, err := c.Dependency.ToDependency()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Dependency: dep,
		Exclusions: vendor.NewExclusionSet(c.Exclusions.Names...),
		Jobs:       c.Jobs,
		VendorDir:  c.VendorDir,
	}, nil
}

// CargoCLI returns the cargo runner the config selects.
func (c *Config) CargoCLI() *cargo.CLI {
	return cargo.NewCLI(c.Cargo.Binary, time.Duration(c.Cargo.Timeout))
}

// NewCache opens the crates.io response cache with the configured TTL.
func (c *Config) NewCache() (*httputil.Cache, error) {
	return integrations.NewCache(time.Duration(c.Cache.TTL))
}
