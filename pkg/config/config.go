package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

const (
	// AppName names the config directory and the environment prefix.
	AppName = "cratepatch"
	// FileName is the config file name, searched in the working directory and
	// then in ConfigDir.
	FileName = "cratepatch.toml"
	// EnvPrefix prefixes environment overrides, e.g. CRATEPATCH_JOBS.
	EnvPrefix = "CRATEPATCH"
)

// FlagKeys maps command-line flag names to config keys. Flags that are set
// explicitly override every other source.
var FlagKeys = map[string]string{
	"dependency":         "dependency.name",
	"rename":             "dependency.alias",
	"git":                "dependency.url",
	"branch":             "dependency.branch",
	"registry":           "dependency.registry",
	"features":           "dependency.features",
	"exclude":            "exclusions.names",
	"resolve-exclusions": "exclusions.resolve",
	"cargo":              "cargo.binary",
	"timeout":            "cargo.timeout",
	"jobs":               "jobs",
	"vendor-dir":         "vendor_dir",
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile, when set, is the only file read. It must exist.
	ConfigFile string
	// ConfigDir overrides ConfigDir() for the user-level file.
	ConfigDir string
	// WorkDir overrides the working directory searched for a project file.
	WorkDir string
	// Flags are bound through FlagKeys. Only flags marked changed apply.
	Flags *pflag.FlagSet
}

// ConfigDir returns the per-user config directory, $XDG_CONFIG_HOME/cratepatch
// on Linux.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load merges defaults, the config file, CRATEPATCH_* environment variables
// and changed flags, in increasing order of precedence. It returns the
// validated config and the path of the file read, or "" when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := readConfigFile(v, opts)
	if err != nil {
		return nil, "", err
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode configuration")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("dependency.name", d.Dependency.Name)
	v.SetDefault("dependency.alias", d.Dependency.Alias)
	v.SetDefault("dependency.source", d.Dependency.Source)
	v.SetDefault("dependency.url", d.Dependency.URL)
	v.SetDefault("dependency.branch", d.Dependency.Branch)
	v.SetDefault("dependency.registry", d.Dependency.Registry)
	v.SetDefault("dependency.features", d.Dependency.Features)
	v.SetDefault("exclusions.names", d.Exclusions.Names)
	v.SetDefault("exclusions.resolve", d.Exclusions.Resolve)
	v.SetDefault("exclusions.depth", d.Exclusions.Depth)
	v.SetDefault("cargo.binary", d.Cargo.Binary)
	v.SetDefault("cargo.timeout", d.Cargo.Timeout)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("vendor_dir", d.VendorDir)
}

// readConfigFile merges the first config file found into v.
func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	v.SetConfigType("toml")

	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return "", errors.New(errors.ErrCodeInvalidConfig, "config file not found: %s", opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", opts.ConfigFile)
		}
		return opts.ConfigFile, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	candidates := []string{filepath.Join(workDir, FileName)}
	cfgDir := opts.ConfigDir
	if cfgDir == "" {
		if dir, err := ConfigDir(); err == nil {
			cfgDir = dir
		}
	}
	if cfgDir != "" {
		candidates = append(candidates, filepath.Join(cfgDir, FileName))
	}

	for _, path := range candidates {
		if !fileExists(path) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		return path, nil
	}
	return "", nil
}

// Marshal encodes c as TOML.
func Marshal(c *Config) ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// WriteFile writes c to path as TOML, creating parent directories. An
// existing file is only replaced when overwrite is set.
func WriteFile(path string, c *Config, overwrite bool) error {
	if !overwrite && fileExists(path) {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create config directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write config %s", path)
	}
	return nil
}

// SaveExclusions sets exclusions.names in the config file at path and leaves
// every other key as written. A missing file is created holding only the
// exclusions. Comments in an existing file are not preserved.
func SaveExclusions(path string, names []string) error {
	doc := map[string]any{}
	if fileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config %s", path)
		}
	}

	section, ok := doc["exclusions"].(map[string]any)
	if !ok {
		section = map[string]any{}
	}
	if names == nil {
		names = []string{}
	}
	section["names"] = names
	doc["exclusions"] = section

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create config directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write config %s", path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
