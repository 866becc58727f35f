// Package config loads and saves the .dotfiles-config.json document that
// describes package lists, target overrides and sudo file mappings.
//
// The configuration is loaded once at startup and threaded through the
// engine as a value; only the new command writes it back.
package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// FileSet is the per-package file mapping list of the special_files
// section.
type FileSet struct {
	Files []types.SpecialFile `json:"files"`
}

// Config is the persisted configuration document.
type Config struct {
	DefaultTarget  string             `json:"default_target"`
	AllPackages    []string           `json:"all_packages"`
	SudoPackages   []string           `json:"sudo_packages"`
	PackageTargets map[string]string  `json:"package_targets"`
	SpecialFiles   map[string]FileSet `json:"special_files"`
}

// Default returns the first-run configuration: home target, no packages.
func Default() *Config {
	return &Config{
		DefaultTarget:  "~",
		AllPackages:    []string{},
		SudoPackages:   []string{},
		PackageTargets: map[string]string{},
		SpecialFiles:   map[string]FileSet{},
	}
}

// Load reads and validates the configuration document. A missing file,
// malformed JSON or missing required keys is an error; first-run commands
// use LoadOrDefault instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad,
			"cannot read configuration %s", path)
	}

	// Decode twice: once raw to distinguish absent keys from zero
	// values, once into the typed document.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"invalid JSON in %s", path)
	}
	for _, key := range []string{"default_target", "all_packages"} {
		if _, ok := raw[key]; !ok {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"configuration is missing required key %q", key)
		}
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"invalid configuration in %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault returns the default configuration when the file does not
// exist yet. Any other load failure is still surfaced.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency of the document.
func (c *Config) Validate() error {
	if c.DefaultTarget == "" {
		return errors.New(errors.ErrConfigInvalid, "default_target cannot be empty")
	}
	for pkg, set := range c.SpecialFiles {
		for _, f := range set.Files {
			if f.Src == "" || f.Dst == "" {
				return errors.Newf(errors.ErrConfigInvalid,
					"special_files entry for %q needs both src and dst", pkg)
			}
		}
	}
	return nil
}

// Save writes the document atomically (temp file plus rename) so an
// interrupt cannot truncate it. Formatting matches the original file:
// two-space indent, trailing newline.
func Save(path string, c *Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "cannot encode configuration")
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "cannot write %s", path)
	}
	return nil
}

// BackupCopy copies the current document to path+".backup" before a
// mutating command rewrites it. Missing source is not an error.
func BackupCopy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}
	if err := os.WriteFile(path+".backup", data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "cannot write %s.backup", path)
	}
	return nil
}

// Has reports whether name is a configured package.
func (c *Config) Has(name string) bool {
	for _, p := range c.AllPackages {
		if p == name {
			return true
		}
	}
	return false
}

// IsSudo reports whether name is in the sudo package list.
func (c *Config) IsSudo(name string) bool {
	for _, p := range c.SudoPackages {
		if p == name {
			return true
		}
	}
	return false
}

// TargetFor returns the configured target root for a package, falling
// back to the default target.
func (c *Config) TargetFor(name string) string {
	if t, ok := c.PackageTargets[name]; ok && t != "" {
		return t
	}
	return c.DefaultTarget
}

// SpecialFilesFor returns the explicit file mappings of a sudo package.
func (c *Config) SpecialFilesFor(name string) []types.SpecialFile {
	return c.SpecialFiles[name].Files
}

// AddPackage registers a new package. Duplicate additions are no-ops.
func (c *Config) AddPackage(name string, sudo bool, customTarget string) {
	if !c.Has(name) {
		c.AllPackages = append(c.AllPackages, name)
	}
	if sudo && !c.IsSudo(name) {
		c.SudoPackages = append(c.SudoPackages, name)
	}
	if customTarget != "" {
		if c.PackageTargets == nil {
			c.PackageTargets = map[string]string{}
		}
		c.PackageTargets[name] = customTarget
	}
}

// MissingPackageDirs cross-checks the configured package list against the
// repository and returns names with no backing directory. Discrepancies
// are reported to the operator, never silently ignored.
func (c *Config) MissingPackageDirs(fsys types.FS, p *paths.Paths) []string {
	var missing []string
	for _, name := range c.AllPackages {
		dir := p.PackageDir(name, c.IsSudo(name))
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}
