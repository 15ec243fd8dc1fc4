package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

// Dependency is a single package@version pair.
type Dependency struct {
	Name    string
	Version string
}

// Spec renders the dependency as an npm install argument.
func (d Dependency) Spec() string { return d.Name + "@" + d.Version }

// DependencyVersionMap maps a package name to the version applied after generation.
type DependencyVersionMap map[string]string

// Sorted returns the entries ordered by package name.
func (m DependencyVersionMap) Sorted() []Dependency {
	out := make([]Dependency, 0, len(m))
	for name, version := range m {
		out = append(out, Dependency{Name: name, Version: version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Repository is the manifest repository field.
type Repository struct {
	Type string
	URL  string
}

// Templates holds optional file overrides for injected files. Empty means built-in.
type Templates struct {
	APIModule string
	NPMIgnore string
}

// GenerationTarget identifies one output flavor for a single run. It is built once by
// Config.Target and must be treated as read-only; maps are private copies.
type GenerationTarget struct {
	Name           string
	Language       string
	Hooks          string
	OutputDir      string
	PackageName    string
	SpecURL        string
	SpecVersion    string
	CodegenVersion string
	LanguageArgs   map[string]string
	Dependencies   DependencyVersionMap
	Repository     Repository
	RemoteURL      string
	Branch         string
	CommitMessage  string
	Templates      Templates
}

// GeneratorArgs renders LanguageArgs as -Dkey=value flags ordered by key.
func (t GenerationTarget) GeneratorArgs() []string {
	keys := make([]string, 0, len(t.LanguageArgs))
	for k := range t.LanguageArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("-D%s=%s", k, t.LanguageArgs[k]))
	}
	return out
}

// Target builds the immutable GenerationTarget for the named target.
func (c *Config) Target(name string) (GenerationTarget, error) {
	tc, ok := c.Targets[name]
	if !ok {
		return GenerationTarget{}, errors.ValidationError("unknown target").
			WithContext("target", name).
			WithContext("available", strings.Join(c.TargetNames(), ",")).
			Build()
	}

	pkg := tc.PackageName
	if pkg == "" {
		pkg = c.PackageName
	}

	args := make(map[string]string, len(tc.LanguageArgs)+2)
	maps.Copy(args, tc.LanguageArgs)
	args[tc.VersionNameKey] = c.Version
	args[tc.PackageNameKey] = pkg

	deps := make(DependencyVersionMap, len(tc.Dependencies))
	maps.Copy(deps, tc.Dependencies)

	outDir := tc.OutputDir
	if outDir == "" {
		outDir = filepath.Join(c.OutputRoot, pkg)
	}

	remote := fmt.Sprintf(c.Git.RemoteURLTemplate, c.GitHubUsername, pkg)

	return GenerationTarget{
		Name:           name,
		Language:       tc.Language,
		Hooks:          tc.Hooks,
		OutputDir:      outDir,
		PackageName:    pkg,
		SpecURL:        c.ResolvedSpecURL(),
		SpecVersion:    c.Version,
		CodegenVersion: c.Codegen.Version,
		LanguageArgs:   args,
		Dependencies:   deps,
		Repository:     Repository{Type: "git", URL: remote},
		RemoteURL:      remote,
		Branch:         c.Git.Branch,
		CommitMessage:  c.Git.CommitMessage,
		Templates: Templates{
			APIModule: tc.Templates.APIModule,
			NPMIgnore: tc.Templates.NPMIgnore,
		},
	}, nil
}

// ResolvedSpecURL substitutes the spec version into SpecURL when it carries a %s verb.
func (c *Config) ResolvedSpecURL() string {
	if strings.Contains(c.SpecURL, "%s") {
		return fmt.Sprintf(c.SpecURL, c.Version)
	}
	return c.SpecURL
}
