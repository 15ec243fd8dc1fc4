package config

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

// ValidateConfig checks the fields every pipeline run depends on.
func ValidateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Version) == "" {
		return errors.ValidationError("version is required").Build()
	}
	if strings.TrimSpace(cfg.PackageName) == "" {
		return errors.ValidationError("package_name is required").Build()
	}
	if strings.TrimSpace(cfg.SpecURL) == "" {
		return errors.ValidationError("spec_url is required").Build()
	}
	// The remote URL written into package.json is built from it.
	if strings.TrimSpace(cfg.GitHubUsername) == "" {
		return errors.ValidationError("github_username is required").Build()
	}
	if len(cfg.Targets) == 0 {
		return errors.ValidationError("at least one target must be configured").Build()
	}
	for _, name := range cfg.TargetNames() {
		t := cfg.Targets[name]
		for dep, version := range t.Dependencies {
			if strings.TrimSpace(dep) == "" || strings.TrimSpace(version) == "" {
				return errors.ValidationError("dependency entries need a name and a version").
					WithContext("target", name).
					WithContext("dependency", fmt.Sprintf("%q=%q", dep, version)).
					Build()
			}
		}
		if t.VersionNameKey == t.PackageNameKey {
			return errors.ValidationError("version_name_key and package_name_key must differ").
				WithContext("target", name).
				Build()
		}
	}
	return nil
}

// TargetNames returns configured target names in sorted order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
