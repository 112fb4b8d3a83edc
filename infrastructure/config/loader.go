// Package config loads named protocol-override profiles from YAML:
// read the whole file, unmarshal into a typed struct, return a
// descriptive error on either failure.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"metacore/domain"
)

// ProfileFile is the on-disk shape of a protocol-override profile
// file: a named set of partial domain.Config overrides, applied over
// DefaultConfig via WithDefaults.
type ProfileFile struct {
	Profiles map[string]domain.Config `yaml:"profiles"`
}

// LoadProfiles reads and parses a profile file from path.
func LoadProfiles(path string) (ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfileFile{}, fmt.Errorf("read profile file %s: %w", path, err)
	}
	var pf ProfileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return ProfileFile{}, fmt.Errorf("unmarshal profile file %s: %w", path, err)
	}
	return pf, nil
}

// Resolve looks up name in pf and layers it over the package defaults,
// validating the result. Returns an error naming the unknown profile
// if name isn't present.
func (pf ProfileFile) Resolve(name string) (domain.Config, error) {
	override, ok := pf.Profiles[name]
	if !ok {
		return domain.Config{}, fmt.Errorf("unknown protocol profile %q", name)
	}
	cfg := override.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return cfg, nil
}
