package gitpublish

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/process"
)

// scriptedExecutor fails commands whose line contains a key of failures and
// honours TolerateFailure the way process.Runner does.
type scriptedExecutor struct {
	failures map[string]string
	ran      []process.Command
}

func (s *scriptedExecutor) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	s.ran = append(s.ran, cmd)
	line := cmd.String()
	for substr, stderr := range s.failures {
		if !strings.Contains(line, substr) {
			continue
		}
		if cmd.TolerateFailure {
			return process.Result{ExitCode: 1, Stderr: stderr}, nil
		}
		return process.Result{ExitCode: 1, Stderr: stderr}, errors.ProcessError("command exited with non-zero status").
			WithCause(&process.ProcessError{Command: line, Dir: cmd.Dir, ExitCode: 1, Stderr: stderr}).
			Build()
	}
	return process.Result{}, nil
}

func (s *scriptedExecutor) lines() []string {
	out := make([]string, 0, len(s.ran))
	for _, c := range s.ran {
		out = append(out, c.String())
	}
	return out
}

func testOptions() Options {
	return Options{RemoteURL: "https://github.com/someone/my-client.git", Branch: "master", Tag: "1.0.3"}
}

func TestPublishSequenceInFreshTree(t *testing.T) {
	dir := t.TempDir()
	exec := &scriptedExecutor{failures: map[string]string{"remote rm origin": "error: No such remote: 'origin'"}}

	require.NoError(t, NewPublisher(exec).Publish(context.Background(), dir, testOptions()))

	assert.Equal(t, []string{
		"git init",
		"git remote rm origin",
		"git remote add origin https://github.com/someone/my-client.git",
		"git pull origin master --allow-unrelated-histories -s recursive -X ours",
		"git add .",
		"git commit -m Auto-generated commit",
		"git tag -f 1.0.3",
		"git push --tags -u origin master",
	}, exec.lines())

	for _, c := range exec.ran {
		assert.Equal(t, dir, c.Dir)
		assert.Equal(t, c.TolerateFailure, c.Quiet, c.String())
	}
}

func TestPublishSkipsInitInExistingRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	exec := &scriptedExecutor{}
	require.NoError(t, NewPublisher(exec, WithGit("/usr/bin/git")).Publish(context.Background(), dir, testOptions()))
	assert.NotContains(t, exec.lines(), "/usr/bin/git init")
	assert.Equal(t, "/usr/bin/git", exec.ran[0].Name)
	assert.Len(t, exec.ran, 7)
}

func TestPublishNothingToCommitProceeds(t *testing.T) {
	exec := &scriptedExecutor{failures: map[string]string{"commit -m": "nothing to commit, working tree clean"}}
	require.NoError(t, NewPublisher(exec).Publish(context.Background(), t.TempDir(), testOptions()))
	assert.Equal(t, "git push --tags -u origin master", exec.lines()[len(exec.ran)-1])
}

func TestPublishAbortsOnFirstFatalFailure(t *testing.T) {
	exec := &scriptedExecutor{failures: map[string]string{"pull origin": "fatal: Authentication failed for 'https://github.com/someone/my-client.git/'"}}
	err := NewPublisher(exec).Publish(context.Background(), t.TempDir(), testOptions())
	require.Error(t, err)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryGit, ce.Category())
	cmd, _ := ce.Context().GetString("command")
	assert.Contains(t, cmd, "git pull origin master")
	reason, _ := ce.Context().GetString("reason")
	assert.Equal(t, "auth", reason)

	var pe *process.ProcessError
	assert.True(t, stderrors.As(err, &pe))
	assert.NotContains(t, exec.lines(), "git add .")
}

func TestPublishKeepsTimeoutCategory(t *testing.T) {
	exec := timeoutExecutor{}
	err := NewPublisher(exec).Publish(context.Background(), t.TempDir(), testOptions())
	assert.True(t, errors.HasCategory(err, errors.CategoryTimeout))
}

type timeoutExecutor struct{}

func (timeoutExecutor) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	if cmd.TolerateFailure {
		return process.Result{}, nil
	}
	return process.Result{}, errors.TimeoutError("command timed out").
		WithCause(&process.ProcessTimeout{Command: cmd.String()}).
		Build()
}

func TestPublishValidatesOptions(t *testing.T) {
	exec := &scriptedExecutor{}
	err := NewPublisher(exec).Publish(context.Background(), t.TempDir(), Options{Branch: "master"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Empty(t, exec.ran)
}

func TestCommandsCustomMessage(t *testing.T) {
	opts := testOptions()
	opts.Message = "Release 1.0.3"
	cmds := Commands(opts, false)
	require.Len(t, cmds, 7)
	assert.Equal(t, []string{"commit", "-m", "Release 1.0.3"}, cmds[4].Args)
	assert.True(t, cmds[4].ToleratesFailure)
	assert.True(t, cmds[0].ToleratesFailure)
	assert.False(t, cmds[1].ToleratesFailure)
}
