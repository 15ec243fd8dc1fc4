package gitpublish

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
	"git.home.luguber.info/inful/clientgen/internal/process"
)

// DefaultMessage is the commit message used when Options.Message is empty.
const DefaultMessage = "Auto-generated commit"

// Options describe one publication.
type Options struct {
	RemoteURL string
	Branch    string
	// Tag is force-moved to the new commit; normally the spec version.
	Tag     string
	Message string
}

// Command is one git invocation of the publish sequence.
type Command struct {
	Args             []string
	ToleratesFailure bool
}

func (c Command) String() string { return "git " + strings.Join(c.Args, " ") }

// Publisher runs the publish sequence in a working tree.
type Publisher struct {
	exec process.Executor
	git  string
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithGit sets the git executable.
func WithGit(path string) Option {
	return func(p *Publisher) {
		if path != "" {
			p.git = path
		}
	}
}

// NewPublisher creates a Publisher running commands through exec.
func NewPublisher(exec process.Executor, opts ...Option) *Publisher {
	p := &Publisher{exec: exec, git: "git"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Commands returns the publish sequence. init is included only when the tree is
// not yet a repository.
func Commands(opts Options, needsInit bool) []Command {
	msg := opts.Message
	if msg == "" {
		msg = DefaultMessage
	}
	cmds := make([]Command, 0, 8)
	if needsInit {
		cmds = append(cmds, Command{Args: []string{"init"}})
	}
	return append(cmds,
		Command{Args: []string{"remote", "rm", "origin"}, ToleratesFailure: true},
		Command{Args: []string{"remote", "add", "origin", opts.RemoteURL}},
		Command{Args: []string{"pull", "origin", opts.Branch, "--allow-unrelated-histories", "-s", "recursive", "-X", "ours"}},
		Command{Args: []string{"add", "."}},
		Command{Args: []string{"commit", "-m", msg}, ToleratesFailure: true},
		Command{Args: []string{"tag", "-f", opts.Tag}},
		Command{Args: []string{"push", "--tags", "-u", "origin", opts.Branch}},
	)
}

// Publish commits the tree in dir, tags it and pushes branch and tags to the remote.
func (p *Publisher) Publish(ctx context.Context, dir string, opts Options) error {
	if err := validate(opts); err != nil {
		return err
	}

	needsInit := !isRepository(dir)
	log := slog.With(logfields.Dir(dir), logfields.URL(opts.RemoteURL))
	log.Info("Publishing to git remote", slog.String("branch", opts.Branch), logfields.Version(opts.Tag), slog.Bool("init", needsInit))

	for _, c := range Commands(opts, needsInit) {
		_, err := p.exec.Run(ctx, process.Command{
			Name:            p.git,
			Args:            c.Args,
			Dir:             dir,
			TolerateFailure: c.ToleratesFailure,
			Quiet:           c.ToleratesFailure,
		})
		if err != nil {
			return classify(err, c, opts)
		}
	}

	if head, err := headCommit(dir); err == nil {
		log.Info("Published", slog.String("head", head), logfields.Version(opts.Tag))
	} else {
		log.Debug("Published; HEAD not readable", logfields.Error(err))
	}
	return nil
}

func validate(opts Options) error {
	var missing []string
	if opts.RemoteURL == "" {
		missing = append(missing, "remote_url")
	}
	if opts.Branch == "" {
		missing = append(missing, "branch")
	}
	if opts.Tag == "" {
		missing = append(missing, "tag")
	}
	if len(missing) > 0 {
		return errors.ValidationError("incomplete publish options").
			WithContext("missing", strings.Join(missing, ",")).
			Build()
	}
	return nil
}

func isRepository(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

func headCommit(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// classify wraps a failed command as a git error. Timeouts and cancellations keep
// their own category.
func classify(err error, c Command, opts Options) error {
	if ce, ok := errors.AsClassified(err); ok && ce.Category() != errors.CategoryProcess {
		return err
	}

	b := errors.GitError("git command failed").
		WithCause(err).
		WithContext("command", c.String()).
		WithContext("url", opts.RemoteURL)

	var pe *process.ProcessError
	if stderrors.As(err, &pe) {
		l := strings.ToLower(pe.Stderr)
		switch {
		case strings.Contains(l, "authentication failed") || strings.Contains(l, "could not read username") || strings.Contains(l, "permission denied"):
			b.WithContext("reason", "auth").UserAction()
		case strings.Contains(l, "repository not found") || strings.Contains(l, "does not appear to be a git repository"):
			b.WithContext("reason", "not_found").UserAction()
		case strings.Contains(l, "couldn't find remote ref"):
			b.WithContext("reason", "missing_branch")
		case strings.Contains(l, "connection reset") || strings.Contains(l, "could not resolve host") || strings.Contains(l, "timed out"):
			b.WithContext("reason", "network").Retryable()
		case strings.Contains(l, "non-fast-forward") || strings.Contains(l, "rejected"):
			b.WithContext("reason", "rejected")
		}
	}
	return b.Build()
}
