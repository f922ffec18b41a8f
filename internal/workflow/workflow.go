package workflow

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jmcampanini/autopr/internal/config"
	"github.com/jmcampanini/autopr/internal/content"
	"github.com/jmcampanini/autopr/internal/git"
	"github.com/jmcampanini/autopr/internal/github"
	"github.com/jmcampanini/autopr/internal/naming"
	"github.com/jmcampanini/autopr/internal/pr"
)

// ErrMergeFailed is returned when every earlier step succeeded but the merge did not.
var ErrMergeFailed = errors.New("merge failed")

// Options holds the per-run settings, after flags have been applied over config.
type Options struct {
	Base        string
	DryRun      bool
	Merge       bool
	MergeDelay  time.Duration
	MergeMethod github.MergeMethod
	PRNumber    int // > 0 skips creation and only merges this pull request
	Remote      string
	WorkDir     string // directory the content file path is relative to
}

// Result describes what a run did. It is populated as far as the run got,
// so callers can report partial progress on error.
type Result struct {
	Branch         string
	Bytes          int // size of the written content
	File           string
	MergeAttempted bool
	Merged         bool
	PR             pr.Ref
}

// sentencer produces the placeholder content for a run.
type sentencer interface {
	Sentence(now time.Time) string
}

// Runner drives one automation run: branch, commit, push, pull request, merge.
type Runner struct {
	branches  *naming.BranchNameGenerator
	cfg       config.Config
	content   sentencer
	files     *naming.ContentFileNamer
	git       git.Git
	log       *clog.Logger
	now       func() time.Time
	provider  github.Provider
	sleep     func(time.Duration)
	writeFile func(path, body string) error
}

// NewRunner creates a Runner that uses gitClient for local steps and provider
// for both pull request creation and merge.
func NewRunner(cfg config.Config, gitClient git.Git, provider github.Provider) *Runner {
	return &Runner{
		branches:  naming.NewBranchNameGenerator(cfg.Branch),
		cfg:       cfg,
		content:   content.NewGenerator(),
		files:     naming.NewContentFileNamer(cfg.Content),
		git:       gitClient,
		log:       clog.Default().WithPrefix("workflow"),
		now:       time.Now,
		provider:  provider,
		sleep:     time.Sleep,
		writeFile: content.Write,
	}
}

// Run executes the workflow. Steps run strictly in order and the first
// failing step aborts the run; nothing already done is rolled back.
func (r *Runner) Run(opts Options) (Result, error) {
	if opts.PRNumber > 0 {
		return r.mergeExisting(opts)
	}

	now := r.now()
	res := Result{
		Branch: r.branches.Generate(now),
		File:   r.files.Generate(now),
	}

	if current, err := r.git.GetCurrentBranch(); err == nil {
		r.log.Debug("Branching from current HEAD", "from", current)
	}
	exists, err := r.git.BranchExists(res.Branch)
	if err != nil {
		return res, err
	}
	if exists {
		return res, fmt.Errorf("branch %s already exists", res.Branch)
	}

	r.log.Info("Creating new branch", "branch", res.Branch)
	if err := r.git.CreateBranch(res.Branch); err != nil {
		return res, err
	}

	path := contentPath(opts.WorkDir, res.File)
	body := r.content.Sentence(now)
	res.Bytes = len(body)
	r.log.Info("Generating random content", "file", res.File, "size", humanize.Bytes(uint64(res.Bytes)))
	if opts.DryRun {
		r.log.Info("Would write file", "path", path)
	} else if err := r.writeFile(path, body); err != nil {
		return res, err
	}

	r.log.Info("Committing changes")
	if err := r.git.Add(path); err != nil {
		return res, err
	}
	if err := r.git.Commit(r.cfg.Content.CommitMessage); err != nil {
		return res, err
	}
	if !opts.DryRun {
		if head, err := r.git.GetHeadCommit(); err == nil {
			r.log.Debug("Committed", "sha", head.ShortSHA(), "subject", head.Subject)
		}
	}

	r.log.Info("Pushing branch to remote", "remote", opts.Remote)
	if err := r.git.Push(opts.Remote, res.Branch); err != nil {
		return res, err
	}

	r.log.Info("Creating pull request", "via", r.provider.Name(), "base", opts.Base)
	req := pr.NewRequest(r.cfg.PR, res.Branch, opts.Base, res.File, now)
	ref, err := r.provider.CreatePullRequest(req)
	if err != nil {
		return res, err
	}
	res.PR = ref
	r.log.Info("Pull request created successfully", "pr", ref.Number, "url", ref.URL)

	r.log.Info("Switching back to base branch", "branch", opts.Base)
	if err := r.git.Checkout(opts.Base); err != nil {
		return res, err
	}

	if !opts.Merge {
		return res, nil
	}

	if opts.MergeDelay > 0 && !opts.DryRun {
		r.log.Info("Waiting before merge", "delay", opts.MergeDelay)
		r.sleep(opts.MergeDelay)
	}
	return r.merge(res, opts)
}

// contentPath resolves the content file against workDir unless it is already absolute.
// The same path is written and staged.
func contentPath(workDir, file string) string {
	if filepath.IsAbs(file) || workDir == "" {
		return file
	}
	return filepath.Join(workDir, file)
}

// mergeExisting merges an already open pull request without touching the
// local repository.
func (r *Runner) mergeExisting(opts Options) (Result, error) {
	existing, err := r.provider.GetPullRequest(opts.PRNumber)
	if err != nil {
		return Result{}, err
	}

	res := Result{Branch: existing.BranchName, PR: existing.Ref()}
	r.log.Info("Found pull request",
		"pr", existing.Number,
		"branch", existing.BranchName,
		"state", existing.State,
		"opened", humanize.Time(existing.CreatedAt))

	if !r.branches.IsGenerated(existing.BranchName) {
		r.log.Warn("Pull request branch was not created by autopr", "branch", existing.BranchName)
	}

	switch existing.State {
	case github.PRStateMerged:
		r.log.Warn("Pull request is already merged", "pr", existing.Number)
		res.Merged = true
		return res, nil
	case github.PRStateClosed:
		return res, fmt.Errorf("cannot merge #%d: %w", existing.Number, github.ErrPRClosed)
	}

	return r.merge(res, opts)
}

func (r *Runner) merge(res Result, opts Options) (Result, error) {
	method := opts.MergeMethod
	if opts.DryRun {
		r.log.Info("Would merge pull request", "pr", res.PR.Number, "method", method)
		return res, nil
	}
	res.MergeAttempted = true
	r.log.Info("Merging pull request", "pr", res.PR.Number, "method", method)
	if err := r.provider.MergePullRequest(res.PR.Number, method); err != nil {
		r.log.Error("Failed to merge pull request", "pr", res.PR.Number, "error", err)
		return res, fmt.Errorf("%w: %s: %w", ErrMergeFailed, res.PR, err)
	}
	res.Merged = true
	r.log.Info("Pull request merged", "pr", res.PR.Number)
	return res, nil
}
