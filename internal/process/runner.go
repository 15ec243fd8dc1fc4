package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

// DefaultTimeout bounds commands that do not set their own timeout.
const DefaultTimeout = 15 * time.Minute

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string
	// Dir defaults to the current process directory.
	Dir string
	Env []string
	// TolerateFailure turns a non-zero exit into a successful Result.
	TolerateFailure bool
	// Quiet disables forwarding of the child's output to the runner's writers.
	Quiet   bool
	Timeout time.Duration
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Executor runs commands. Pipeline steps and the git publisher depend on this
// interface so tests can substitute a recorder.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Runner is the os/exec backed Executor.
type Runner struct {
	stdout  io.Writer
	stderr  io.Writer
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets the writers child output is forwarded to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithTimeout sets the default per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a Runner forwarding output to os.Stdout/os.Stderr.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{stdout: os.Stdout, stderr: os.Stderr, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it to exit.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if !cmd.Quiet {
		c.Stdout = io.MultiWriter(&stdout, r.stdout)
		c.Stderr = io.MultiWriter(&stderr, r.stderr)
	}

	slog.Debug("Running command", logfields.Command(cmd.String()), logfields.Dir(cmd.Dir))
	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.ExitCode = -1
		return res, errors.TimeoutError("command timed out").
			WithContext("command", cmd.String()).
			WithContext("timeout", timeout.String()).
			WithCause(&ProcessTimeout{Command: cmd.String(), Dir: cmd.Dir, Timeout: timeout}).
			Build()
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, errors.WrapError(ctx.Err(), errors.CategoryRuntime, "command canceled").
			WithContext("command", cmd.String()).
			Build()
	}

	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		res.ExitCode = -1
		return res, errors.ProcessError("command could not be started").
			WithContext("command", cmd.String()).
			WithCause(&ProcessError{Command: cmd.String(), Dir: cmd.Dir, ExitCode: -1, Err: err}).
			Build()
	}

	res.ExitCode = exitErr.ExitCode()
	if cmd.TolerateFailure {
		slog.Debug("Command failed (tolerated)",
			logfields.Command(cmd.String()),
			logfields.ExitCode(res.ExitCode))
		return res, nil
	}
	return res, errors.ProcessError("command failed").
		WithContext("command", cmd.String()).
		WithContext("exit_code", res.ExitCode).
		WithCause(&ProcessError{
			Command:  cmd.String(),
			Dir:      cmd.Dir,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}).
		Build()
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
