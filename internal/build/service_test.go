package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/clientgen/internal/artifact"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/generator"
	"git.home.luguber.info/inful/clientgen/internal/pipeline"
	"git.home.luguber.info/inful/clientgen/internal/process"
)

// treeExecutor writes a minimal generated tree when the generator jar runs and
// succeeds for every other command.
type treeExecutor struct {
	mu   sync.Mutex
	cmds []string
}

func (e *treeExecutor) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	e.mu.Lock()
	e.cmds = append(e.cmds, cmd.String())
	e.mu.Unlock()
	if cmd.Name != "java" {
		return process.Result{}, nil
	}
	var out string
	for i, a := range cmd.Args {
		if a == "-o" {
			out = cmd.Args[i+1]
		}
	}
	files := map[string]string{
		"package.json":  `{"name":"x","scripts":{"build":"tsc"},"peerDependencies":{"rxjs":"^5.0.0"}}`,
		"tsconfig.json": `{"compilerOptions":{}}`,
		"variables.ts":  "export const X = new OpaqueToken('x');\n",
		"index.ts":      "export * from './variables';\n",
	}
	if err := os.MkdirAll(out, 0o750); err != nil {
		return process.Result{}, err
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(out, name), []byte(body), 0o600); err != nil {
			return process.Result{}, err
		}
	}
	return process.Result{}, nil
}

type stubArtifacts struct{}

func (stubArtifacts) Ensure(_ context.Context, v string) (artifact.Artifact, error) {
	return artifact.Artifact{Version: v, Path: "codegen.jar"}, nil
}

type memoryHistory struct{ runs []*pipeline.Run }

func (m *memoryHistory) Record(_ context.Context, run *pipeline.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.Parse([]byte(`
version: "1.0.3"
package_name: my-client
spec_url: "https://example.com/%s/swagger.yaml"
github_username: someone
output_root: ` + root + `
targets:
  ng:
    language: typescript-angular2
    version_name_key: npmVersion
    package_name_key: npmName
    dependencies: {rxjs: "^5.4.0"}
`))
	require.NoError(t, err)
	return cfg
}

func newTestService(exec *treeExecutor, hist *memoryHistory) *DefaultService {
	return NewService().
		WithExecutorFactory(func(*config.Config) process.Executor { return exec }).
		WithArtifactFactory(func(*config.Config) generator.ArtifactSource { return stubArtifacts{} }).
		WithHistory(hist)
}

func TestServiceRunGenerate(t *testing.T) {
	exec := &treeExecutor{}
	hist := &memoryHistory{}
	cfg := testConfig(t)

	res, err := newTestService(exec, hist).Run(context.Background(), Request{Config: cfg, Target: "ng", Options: Options{GitPush: true}})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Status.IsSuccess())
	assert.Equal(t, filepath.Join(cfg.OutputRoot, "my-client"), res.OutputPath)
	assert.Contains(t, res.Changed, "package.json")
	require.Len(t, hist.runs, 1)
	assert.Equal(t, pipeline.StateDone, hist.runs[0].State)

	joined := strings.Join(exec.cmds, "\n")
	assert.Contains(t, joined, "-l typescript-angular2")
	assert.Contains(t, joined, "git push --tags -u origin master")
	assert.Contains(t, joined, "git tag -f 1.0.3")
	assert.NotContains(t, joined, "npm publish")
}

func TestServiceGitOnly(t *testing.T) {
	exec := &treeExecutor{}
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.OutputRoot, "my-client"), 0o750))

	res, err := newTestService(exec, &memoryHistory{}).Run(context.Background(), Request{Config: cfg, Target: "ng", Options: Options{GitOnly: true}})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	for _, c := range exec.cmds {
		assert.True(t, strings.HasPrefix(c, "git "), c)
	}
	require.Len(t, res.Run.Steps, 1)
	assert.Equal(t, generator.StepGitPublish, res.Run.Steps[0].Name)
}

func TestServiceUnknownTarget(t *testing.T) {
	res, err := newTestService(&treeExecutor{}, &memoryHistory{}).Run(context.Background(), Request{Config: testConfig(t), Target: "nope"})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestServiceNilConfig(t *testing.T) {
	res, err := NewService().Run(context.Background(), Request{Target: "ng"})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestServiceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hist := &memoryHistory{}
	res, err := newTestService(&treeExecutor{}, hist).Run(ctx, Request{Config: testConfig(t), Target: "ng"})
	require.Error(t, err)
	assert.Equal(t, StatusCanceled, res.Status)
	assert.Len(t, hist.runs, 1)
}
