package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

// Config is the static configuration read once at startup. Pipeline steps never
// see it directly; they receive an immutable GenerationTarget built from it.
type Config struct {
	Version        string                  `yaml:"version"`
	PackageName    string                  `yaml:"package_name"`
	SpecURL        string                  `yaml:"spec_url"`
	GitHubUsername string                  `yaml:"github_username"`
	OutputRoot     string                  `yaml:"output_root"`
	Codegen        CodegenConfig           `yaml:"codegen"`
	Process        ProcessConfig           `yaml:"process"`
	Git            GitConfig               `yaml:"git"`
	History        HistoryConfig           `yaml:"history"`
	Metrics        MetricsConfig           `yaml:"metrics"`
	Daemon         DaemonConfig            `yaml:"daemon"`
	Targets        map[string]TargetConfig `yaml:"targets"`
}

// CodegenConfig locates the generator jar.
type CodegenConfig struct {
	Version     string `yaml:"version"`
	CacheDir    string `yaml:"cache_dir"`
	URLTemplate string `yaml:"url_template"` // %[1]s is replaced by Version
	Java        string `yaml:"java"`
}

// ProcessConfig bounds external command execution.
type ProcessConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	NPM     string        `yaml:"npm"`
	Git     string        `yaml:"git"`
}

// GitConfig controls the git publish flow.
type GitConfig struct {
	Branch            string `yaml:"branch"`
	CommitMessage     string `yaml:"commit_message"`
	RemoteURLTemplate string `yaml:"remote_url_template"` // %[1]s user, %[2]s package
}

// HistoryConfig enables the SQLite run history when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig enables Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// DaemonConfig controls scheduled regeneration.
type DaemonConfig struct {
	Interval    time.Duration `yaml:"interval"`
	WatchConfig bool          `yaml:"watch_config"`
	Publish     bool          `yaml:"publish"`
	GitPush     bool          `yaml:"git_push"`
}

// TargetConfig describes one output flavor.
type TargetConfig struct {
	Language       string            `yaml:"language"`
	Hooks          string            `yaml:"hooks"`
	OutputDir      string            `yaml:"output_dir,omitempty"`
	PackageName    string            `yaml:"package_name,omitempty"`
	VersionNameKey string            `yaml:"version_name_key,omitempty"`
	PackageNameKey string            `yaml:"package_name_key,omitempty"`
	LanguageArgs   map[string]string `yaml:"language_args,omitempty"`
	Dependencies   map[string]string `yaml:"dependencies,omitempty"`
	Templates      TemplatesConfig   `yaml:"templates,omitempty"`
}

// TemplatesConfig overrides the built-in files injected into the working tree.
type TemplatesConfig struct {
	APIModule string `yaml:"api_module,omitempty"`
	NPMIgnore string `yaml:"npmignore,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	return Parse(data)
}

// Parse decodes YAML configuration content, expanding ${VAR} references and
// applying defaults before validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Version:        "1.0.0",
		PackageName:    "my-api-client",
		SpecURL:        "https://app.swaggerhub.com/apiproxy/schema/file/example/Api/%s/swagger.yaml",
		GitHubUsername: "example",
		OutputRoot:     "output",
		Codegen:        CodegenConfig{Version: DefaultCodegenVersion},
		Process:        ProcessConfig{Timeout: DefaultProcessTimeout},
		Daemon:         DaemonConfig{Interval: time.Hour},
		Targets: map[string]TargetConfig{
			"typescript-angular2": {
				Language:       "typescript-angular2",
				Hooks:          "angular2",
				VersionNameKey: "npmVersion",
				PackageNameKey: "npmName",
				LanguageArgs:   map[string]string{"supportsES6": "true"},
				Dependencies: map[string]string{
					"@angular/common":   "^4.0.0",
					"@angular/compiler": "^4.0.0",
					"@angular/core":     "^4.0.0",
					"rxjs":              "^5.4.0",
					"typescript":        "^2.3.0",
					"zone.js":           "^0.8.12",
				},
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	slog.Info("Configuration file created", "path", configPath)
	return nil
}
