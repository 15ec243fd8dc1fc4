package config

import (
	"strings"
	"time"
)

// Built-in defaults.
const (
	DefaultCodegenVersion     = "2.2.3"
	DefaultCodegenURLTemplate = "https://repo1.maven.org/maven2/io/swagger/swagger-codegen-cli/%[1]s/swagger-codegen-cli-%[1]s.jar"
	DefaultProcessTimeout     = 15 * time.Minute
	DefaultOutputRoot         = "output"
	DefaultGitBranch          = "master"
	DefaultCommitMessage      = "Auto-generated commit"
	DefaultRemoteURLTemplate  = "https://github.com/%[1]s/%[2]s.git"
	DefaultVersionNameKey     = "npmVersion"
	DefaultPackageNameKey     = "npmName"
	DefaultHooks              = "typescript"
	DefaultDaemonInterval     = time.Hour
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CodegenDefaultApplier handles generator artifact defaults.
type CodegenDefaultApplier struct{}

func (CodegenDefaultApplier) Domain() string { return "codegen" }

func (CodegenDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Codegen.Version == "" {
		cfg.Codegen.Version = DefaultCodegenVersion
	}
	if cfg.Codegen.CacheDir == "" {
		cfg.Codegen.CacheDir = "."
	}
	if cfg.Codegen.URLTemplate == "" {
		cfg.Codegen.URLTemplate = DefaultCodegenURLTemplate
	}
	if cfg.Codegen.Java == "" {
		cfg.Codegen.Java = "java"
	}
	return nil
}

// ProcessDefaultApplier handles external command defaults.
type ProcessDefaultApplier struct{}

func (ProcessDefaultApplier) Domain() string { return "process" }

func (ProcessDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Process.Timeout <= 0 {
		cfg.Process.Timeout = DefaultProcessTimeout
	}
	if cfg.Process.NPM == "" {
		cfg.Process.NPM = "npm"
	}
	if cfg.Process.Git == "" {
		cfg.Process.Git = "git"
	}
	return nil
}

// GitDefaultApplier handles git publish defaults.
type GitDefaultApplier struct{}

func (GitDefaultApplier) Domain() string { return "git" }

func (GitDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultGitBranch
	}
	if cfg.Git.CommitMessage == "" {
		cfg.Git.CommitMessage = DefaultCommitMessage
	}
	if cfg.Git.RemoteURLTemplate == "" {
		cfg.Git.RemoteURLTemplate = DefaultRemoteURLTemplate
	}
	return nil
}

// TargetDefaultApplier fills per-target defaults.
type TargetDefaultApplier struct{}

func (TargetDefaultApplier) Domain() string { return "targets" }

func (TargetDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = DefaultOutputRoot
	}
	for name, t := range cfg.Targets {
		if t.Language == "" {
			t.Language = name
		}
		if t.Hooks == "" {
			t.Hooks = defaultHooksFor(t.Language)
		}
		if t.VersionNameKey == "" {
			t.VersionNameKey = DefaultVersionNameKey
		}
		if t.PackageNameKey == "" {
			t.PackageNameKey = DefaultPackageNameKey
		}
		cfg.Targets[name] = t
	}
	return nil
}

// DaemonDefaultApplier handles scheduled regeneration defaults.
type DaemonDefaultApplier struct{}

func (DaemonDefaultApplier) Domain() string { return "daemon" }

func (DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon.Interval <= 0 {
		cfg.Daemon.Interval = DefaultDaemonInterval
	}
	return nil
}

func defaultHooksFor(language string) string {
	if strings.Contains(language, "angular2") {
		return "angular2"
	}
	return DefaultHooks
}

func appliers() []DefaultApplier {
	return []DefaultApplier{
		CodegenDefaultApplier{},
		ProcessDefaultApplier{},
		GitDefaultApplier{},
		TargetDefaultApplier{},
		DaemonDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range appliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
