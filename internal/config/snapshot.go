package config

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Snapshot computes a stable hash of the generation-affecting configuration fields.
// The daemon compares snapshots to skip reloads when an edit did not change anything
// that influences the generated tree. Map fields are hashed in sorted key order.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	wMap := func(prefix string, m map[string]string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w(prefix+"."+k, m[k])
		}
	}

	w("version", c.Version)
	w("package_name", c.PackageName)
	w("spec_url", c.SpecURL)
	w("github_username", c.GitHubUsername)
	w("output_root", c.OutputRoot)
	w("codegen.version", c.Codegen.Version)
	w("codegen.url_template", c.Codegen.URLTemplate)
	w("git.branch", c.Git.Branch)
	w("git.remote_url_template", c.Git.RemoteURLTemplate)
	for _, name := range c.TargetNames() {
		t := c.Targets[name]
		p := "targets." + name
		w(p+".language", t.Language)
		w(p+".hooks", t.Hooks)
		w(p+".output_dir", t.OutputDir)
		w(p+".package_name", t.PackageName)
		w(p+".version_name_key", t.VersionNameKey)
		w(p+".package_name_key", t.PackageNameKey)
		wMap(p+".language_args", t.LanguageArgs)
		wMap(p+".dependencies", t.Dependencies)
		w(p+".templates.api_module", t.Templates.APIModule)
		w(p+".templates.npmignore", t.Templates.NPMIgnore)
	}
	return hex.EncodeToString(h.Sum(nil))
}
