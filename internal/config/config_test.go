package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

const sampleConfig = `
version: "1.0.3"
package_name: employee-client
spec_url: "https://app.swaggerhub.com/apiproxy/schema/file/org/Employee/%s/swagger.yaml"
github_username: octo
targets:
  typescript-angular2:
    language_args:
      supportsES6: "true"
    dependencies:
      "@angular/core": "^4.0.0"
      rxjs: "^5.4.0"
  typescript-fetch: {}
`

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("CLIENTGEN_TEST_USER", "hubot")

	body := strings.Replace(sampleConfig, "github_username: octo", "github_username: ${CLIENTGEN_TEST_USER}", 1)
	cfg, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "hubot", cfg.GitHubUsername)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "octo", cfg.GitHubUsername)
	assert.Equal(t, DefaultCodegenVersion, cfg.Codegen.Version)
	assert.Equal(t, ".", cfg.Codegen.CacheDir)
	assert.Equal(t, DefaultProcessTimeout, cfg.Process.Timeout)
	assert.Equal(t, DefaultGitBranch, cfg.Git.Branch)
	assert.Equal(t, DefaultOutputRoot, cfg.OutputRoot)
	assert.Equal(t, time.Hour, cfg.Daemon.Interval)

	ng := cfg.Targets["typescript-angular2"]
	assert.Equal(t, "typescript-angular2", ng.Language)
	assert.Equal(t, "angular2", ng.Hooks)
	assert.Equal(t, DefaultVersionNameKey, ng.VersionNameKey)
	assert.Equal(t, DefaultHooks, cfg.Targets["typescript-fetch"].Hooks)
}

func TestParseDurations(t *testing.T) {
	cfg, err := Parse([]byte(`
version: "1"
package_name: p
spec_url: s
github_username: u
process: {timeout: 90s}
daemon: {interval: 30m}
targets: {t: {}}
`))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Process.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Daemon.Interval)
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"missing version": "package_name: p\nspec_url: s\ngithub_username: u\ntargets: {t: {}}\n",
		"missing package": "version: '1'\nspec_url: s\ngithub_username: u\ntargets: {t: {}}\n",
		"missing spec":    "version: '1'\npackage_name: p\ngithub_username: u\ntargets: {t: {}}\n",
		"missing user":    "version: '1'\npackage_name: p\nspec_url: s\ntargets: {t: {}}\n",
		"no targets":      "version: '1'\npackage_name: p\nspec_url: s\ngithub_username: u\n",
		"empty dep":       "version: '1'\npackage_name: p\nspec_url: s\ngithub_username: u\ntargets: {t: {dependencies: {rxjs: ''}}}\n",
		"same arg keys":   "version: '1'\npackage_name: p\nspec_url: s\ngithub_username: u\ntargets: {t: {version_name_key: k, package_name_key: k}}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientgen.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err, "second init without force must fail")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Targets, "typescript-angular2")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTargetBuildsImmutableValue(t *testing.T) {
	t.Setenv("CLIENTGEN_TEST_USER", "octo")
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	target, err := cfg.Target("typescript-angular2")
	require.NoError(t, err)

	assert.Equal(t, "https://app.swaggerhub.com/apiproxy/schema/file/org/Employee/1.0.3/swagger.yaml", target.SpecURL)
	assert.Equal(t, filepath.Join("output", "employee-client"), target.OutputDir)
	assert.Equal(t, "https://github.com/octo/employee-client.git", target.RemoteURL)
	assert.Equal(t, Repository{Type: "git", URL: target.RemoteURL}, target.Repository)
	assert.Equal(t, []string{
		"-DnpmName=employee-client",
		"-DnpmVersion=1.0.3",
		"-DsupportsES6=true",
	}, target.GeneratorArgs())

	// Mutating the target must not leak back into the configuration.
	target.Dependencies["rxjs"] = "^6.0.0"
	target.LanguageArgs["extra"] = "1"
	again, err := cfg.Target("typescript-angular2")
	require.NoError(t, err)
	assert.Equal(t, "^5.4.0", again.Dependencies["rxjs"])
	assert.NotContains(t, again.LanguageArgs, "extra")
	assert.NotContains(t, cfg.Targets["typescript-angular2"].LanguageArgs, "npmName")
}

func TestTargetUnknown(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	_, err = cfg.Target("swift")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestDependencyVersionMapSorted(t *testing.T) {
	m := DependencyVersionMap{"rxjs": "^5", "@angular/core": "^4", "zone.js": "^0.8"}
	got := m.Sorted()
	require.Len(t, got, 3)
	assert.Equal(t, "@angular/core@^4", got[0].Spec())
	assert.Equal(t, "rxjs", got[1].Name)
	assert.Equal(t, "zone.js", got[2].Name)
}

func TestSnapshotStable(t *testing.T) {
	a, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	b, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	b.Targets["typescript-angular2"].Dependencies["rxjs"] = "^6.0.0"
	assert.NotEqual(t, a.Snapshot(), b.Snapshot())

	b.Daemon.Interval = time.Minute
	c, _ := Parse([]byte(sampleConfig))
	c.Daemon.Interval = time.Minute
	assert.Equal(t, a.Snapshot(), c.Snapshot(), "daemon settings do not affect generated output")

	var nilCfg *Config
	assert.Empty(t, nilCfg.Snapshot())
}
