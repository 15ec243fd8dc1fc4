package generator

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/clientgen/internal/artifact"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/gitpublish"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
	"git.home.luguber.info/inful/clientgen/internal/patch"
	"git.home.luguber.info/inful/clientgen/internal/pipeline"
	"git.home.luguber.info/inful/clientgen/internal/process"
)

// Step names in canonical order.
const (
	StepGenerate               pipeline.StepName = "generate"
	StepInstallDependencies    pipeline.StepName = "install_dependencies"
	StepFixBuildScript         pipeline.StepName = "fix_build_script"
	StepAddRepository          pipeline.StepName = "add_repository"
	StepUpdatePackages         pipeline.StepName = "update_packages"
	StepUpdatePeers            pipeline.StepName = "update_peers"
	StepRenameDeprecatedSymbol pipeline.StepName = "rename_deprecated_symbol"
	StepInjectAPIModule        pipeline.StepName = "inject_api_module"
	StepBuild                  pipeline.StepName = "build"
	StepPublish                pipeline.StepName = "publish"
	StepGitPublish             pipeline.StepName = "git_publish"
)

// ArtifactSource provides a local generator jar for a version.
type ArtifactSource interface {
	Ensure(ctx context.Context, version string) (artifact.Artifact, error)
}

// TreePublisher pushes a finished tree to its remote.
type TreePublisher interface {
	Publish(ctx context.Context, dir string, opts gitpublish.Options) error
}

// Generator runs the post-generation pipeline for one target.
type Generator struct {
	target    config.GenerationTarget
	exec      process.Executor
	artifacts ArtifactSource
	hooks     Hooks
	templates templateSet
	tree      *WorkingTree
	observer  pipeline.Observer
	git       TreePublisher
	java      string
	npm       string
}

// Option configures a Generator.
type Option func(*Generator)

// WithObserver attaches an observer that receives step and run callbacks.
func WithObserver(o pipeline.Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithGitPublisher appends a git_publish step after a successful build.
func WithGitPublisher(p TreePublisher) Option {
	return func(g *Generator) { g.git = p }
}

// WithJava sets the java executable used to run the generator jar.
func WithJava(path string) Option {
	return func(g *Generator) {
		if path != "" {
			g.java = path
		}
	}
}

// WithNPM sets the npm executable.
func WithNPM(path string) Option {
	return func(g *Generator) {
		if path != "" {
			g.npm = path
		}
	}
}

// New creates a Generator for target. It fails with a config error when the
// target's hook set is unknown or a template override cannot be read.
func New(target config.GenerationTarget, exec process.Executor, artifacts ArtifactSource, opts ...Option) (*Generator, error) {
	h, err := LookupHooks(target.Hooks)
	if err != nil {
		return nil, err
	}
	tmpl, err := loadTemplates(target.Templates)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		target:    target,
		exec:      exec,
		artifacts: artifacts,
		hooks:     h,
		templates: tmpl,
		tree:      NewWorkingTree(target.OutputDir),
		observer:  pipeline.NoopObserver{},
		java:      "java",
		npm:       "npm",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Tree returns the working tree the pipeline operates on.
func (g *Generator) Tree() *WorkingTree { return g.tree }

// Steps returns the ordered step list. The publish step is included only when requested.
func (g *Generator) Steps(publish bool) []pipeline.StepDef {
	return pipeline.New().
		Add(StepGenerate, pipeline.StateGenerating, g.generate).
		Add(StepInstallDependencies, pipeline.StateDependenciesInstalling, g.npmStep("install")).
		Add(StepFixBuildScript, pipeline.StatePatching, pipeline.Parallel(
			g.patchJSON("package.json", fixBuildScripts),
			g.patchJSON("tsconfig.json", fixTSConfig),
		)).
		Add(StepAddRepository, pipeline.StatePatching, g.patchJSON("package.json", setRepository(g.target.Repository))).
		Add(StepUpdatePackages, pipeline.StatePatching, g.updatePackages).
		Add(StepUpdatePeers, pipeline.StatePatching, g.patchJSON("package.json", updatePeers(g.target.Dependencies))).
		AddIf(g.hooks.RenameDeprecatedSymbol, StepRenameDeprecatedSymbol, pipeline.StatePatching, g.patchText("variables.ts", renameDeprecatedSymbol)).
		AddIf(g.hooks.InjectAPIModule, StepInjectAPIModule, pipeline.StatePatching, g.injectAPIModule).
		Add(StepBuild, pipeline.StateBuilding, g.npmStep("run", "build")).
		AddIf(publish, StepPublish, pipeline.StatePublishing, g.npmStep("publish", "--access", "public")).
		AddIf(g.git != nil, StepGitPublish, pipeline.StatePublishing, g.gitPublish).
		Build()
}

// GitOnlySteps returns a single git_publish step for an already generated tree.
func (g *Generator) GitOnlySteps() []pipeline.StepDef {
	return pipeline.New().Add(StepGitPublish, pipeline.StatePublishing, g.gitPublish).Build()
}

// Run executes the pipeline and returns the finished run record. The error is the
// fatal step failure, if any.
func (g *Generator) Run(ctx context.Context, publish bool) (*pipeline.Run, error) {
	return g.RunSteps(ctx, g.Steps(publish))
}

// RunSteps executes steps against this generator's tree.
func (g *Generator) RunSteps(ctx context.Context, steps []pipeline.StepDef) (*pipeline.Run, error) {
	run := pipeline.NewRun(g.target.Name)
	slog.Info("Starting pipeline",
		logfields.RunID(run.ID),
		logfields.Target(g.target.Name),
		logfields.Version(g.target.SpecVersion),
		logfields.Dir(g.target.OutputDir),
		slog.Int("steps", len(steps)))

	err := pipeline.Execute(ctx, run, steps, g.observer)
	if changed := g.tree.Changed(); len(changed) > 0 {
		slog.Info("Patched files", logfields.RunID(run.ID), slog.Any("files", changed))
	}
	return run, err
}

func (g *Generator) generate(ctx context.Context) error {
	art, err := g.artifacts.Ensure(ctx, g.target.CodegenVersion)
	if err != nil {
		return err
	}
	args := []string{
		"-jar", art.Path,
		"generate",
		"-i", g.target.SpecURL,
		"-l", g.target.Language,
		"-o", g.target.OutputDir,
	}
	args = append(args, g.target.GeneratorArgs()...)
	_, err = g.exec.Run(ctx, process.Command{Name: g.java, Args: args})
	return err
}

func (g *Generator) gitPublish(ctx context.Context) error {
	if g.git == nil {
		return errors.InternalError("git publisher not configured").Build()
	}
	if _, err := os.Stat(g.tree.Root); err != nil {
		return errors.FileSystemError("output tree does not exist").
			WithContext("path", g.tree.Root).
			WithCause(err).
			Build()
	}
	return g.git.Publish(ctx, g.tree.Root, gitpublish.Options{
		RemoteURL: g.target.RemoteURL,
		Branch:    g.target.Branch,
		Tag:       g.target.SpecVersion,
		Message:   g.target.CommitMessage,
	})
}

func (g *Generator) npmStep(args ...string) pipeline.StepFunc {
	return func(ctx context.Context) error {
		_, err := g.exec.Run(ctx, process.Command{Name: g.npm, Args: args, Dir: g.tree.Root})
		return err
	}
}

func (g *Generator) updatePackages(ctx context.Context) error {
	if _, err := g.exec.Run(ctx, process.Command{
		Name:            g.npm,
		Args:            []string{"uninstall", "--save-dev", "typings"},
		Dir:             g.tree.Root,
		TolerateFailure: true,
		Quiet:           true,
	}); err != nil {
		return err
	}
	for _, rel := range []string{"typings.json", "typings"} {
		if err := removeIfExists(g.tree.Path(rel)); err != nil {
			return err
		}
	}

	// A bare "npm install --save-dev" reinstalls everything.
	if len(g.target.Dependencies) == 0 {
		return nil
	}
	args := []string{"install", "--save-dev"}
	for _, d := range g.target.Dependencies.Sorted() {
		args = append(args, d.Spec())
	}
	_, err := g.exec.Run(ctx, process.Command{Name: g.npm, Args: args, Dir: g.tree.Root})
	return err
}

func (g *Generator) injectAPIModule(ctx context.Context) error {
	return pipeline.Sequence(
		g.writeFile("api.module.ts", g.templates.apiModule),
		g.patchText("index.ts", appendModuleExport),
		g.writeFile(".npmignore", g.templates.npmIgnore),
	)(ctx)
}

func (g *Generator) patchJSON(rel string, fn patch.JSONTransform) pipeline.StepFunc {
	return func(context.Context) error {
		changed, err := patch.JSON(g.tree.Path(rel), fn)
		if changed {
			g.tree.Mark(rel)
		}
		return err
	}
}

func (g *Generator) patchText(rel string, fn patch.TextTransform) pipeline.StepFunc {
	return func(context.Context) error {
		changed, err := patch.Text(g.tree.Path(rel), fn)
		if changed {
			g.tree.Mark(rel)
		}
		return err
	}
}

func (g *Generator) writeFile(rel string, data []byte) pipeline.StepFunc {
	return func(context.Context) error {
		path := g.tree.Path(rel)
		if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
			return nil
		}
		// #nosec G306 -- injected files ship in the public npm package
		if err := patch.WriteFileAtomic(path, data, 0o644); err != nil {
			return errors.FileSystemError("cannot write file").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		g.tree.Mark(rel)
		return nil
	}
}

func removeIfExists(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return errors.FileSystemError("cannot remove path").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	slog.Debug("Removed", logfields.Path(path))
	return nil
}
