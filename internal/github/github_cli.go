package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/autopr/internal/pr"
)

// ghRunner executes gh with args in dir and returns its stdout and stderr.
type ghRunner func(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)

// GitHubCli provides GitHub operations by executing the gh CLI.
type GitHubCli struct {
	dryRun     bool
	log        *clog.Logger
	run        ghRunner
	timeout    time.Duration
	workingDir string
}

var _ Provider = &GitHubCli{}

// NewCli creates a new GitHubCli instance that executes gh commands
// in the specified working directory. A zero timeout disables the deadline.
func NewCli(dryRun bool, workingDir string, timeout time.Duration) *GitHubCli {
	return &GitHubCli{
		dryRun:     dryRun,
		log:        clog.Default().WithPrefix("github"),
		run:        runGh,
		timeout:    timeout,
		workingDir: workingDir,
	}
}

func runGh(ctx context.Context, dir string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GH_PROMPT_DISABLED=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// timeoutContext bounds a call by timeout; zero or negative means no deadline.
func timeoutContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (g *GitHubCli) Name() string {
	return "gh"
}

func (g *GitHubCli) executeGhCommand(args ...string) (string, error) {
	g.log.Debug("Executing gh command", "cmd", "gh", "args", args, "workingDir", g.workingDir)

	ctx, cancel := timeoutContext(g.timeout)
	defer cancel()

	stdout, stderr, err := g.run(ctx, g.workingDir, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			g.log.Warn("gh command timed out", "args", args, "timeout", g.timeout, "error", err)
			return "", fmt.Errorf("gh %s timed out after %s", strings.Join(args, " "), g.timeout)
		}
		g.log.Warn("gh command failed", "args", args, "stderr", stderr, "error", err)
		return "", fmt.Errorf("gh %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr))
	}

	output := strings.TrimSpace(stdout)
	g.log.Debug("gh command succeeded", "args", args, "outputLen", len(output))
	return output, nil
}

// AuthToken returns the token gh is logged in with.
func (g *GitHubCli) AuthToken() (string, error) {
	output, err := g.executeGhCommand("auth", "token")
	if err != nil {
		return "", fmt.Errorf("failed to read gh auth token: %w", err)
	}
	return output, nil
}

func (g *GitHubCli) CreatePullRequest(req pr.Request) (pr.Ref, error) {
	args := []string{
		"pr", "create",
		"--title", req.Title,
		"--body", req.Body,
		"--base", req.Base,
		"--head", req.Head,
	}
	if g.dryRun {
		g.log.Info("Would execute gh command", "cmd", "gh", "args", args)
		return pr.Ref{}, nil
	}

	if _, err := g.executeGhCommand(args...); err != nil {
		return pr.Ref{}, fmt.Errorf("failed to create pull request: %w", err)
	}

	url, err := g.executeGhCommand("pr", "view", req.Head, "--json", "url", "-q", ".url")
	if err != nil {
		return pr.Ref{}, fmt.Errorf("failed to read pull request url: %w", err)
	}

	numOutput, err := g.executeGhCommand("pr", "view", req.Head, "--json", "number", "-q", ".number")
	if err != nil {
		return pr.Ref{}, fmt.Errorf("failed to read pull request number: %w", err)
	}
	number, err := strconv.Atoi(numOutput)
	if err != nil {
		return pr.Ref{}, fmt.Errorf("failed to parse pull request number %q: %w", numOutput, err)
	}

	return pr.Ref{Number: number, URL: url}, nil
}

func (g *GitHubCli) GetPullRequest(prNum int) (PullRequest, error) {
	args := []string{
		"pr", "view", strconv.Itoa(prNum),
		"--json", prJsonFields,
	}

	output, err := g.executeGhCommand(args...)
	if err != nil {
		return PullRequest{}, fmt.Errorf("failed to get pull request #%d: %w", prNum, classifyGhError(err))
	}

	var p PullRequest
	if err := json.Unmarshal([]byte(output), &p); err != nil {
		return PullRequest{}, fmt.Errorf("failed to parse pull request #%d: %w", prNum, err)
	}

	return p, nil
}

// MergePullRequest requests auto-merge first; when the repository does not
// allow it the pull request is merged immediately instead.
func (g *GitHubCli) MergePullRequest(prNum int, method MergeMethod) error {
	args := []string{"pr", "merge", strconv.Itoa(prNum), method.Flag(), "--delete-branch"}
	autoArgs := append(append([]string{}, args...), "--auto")

	if g.dryRun {
		g.log.Info("Would execute gh command", "cmd", "gh", "args", autoArgs)
		return nil
	}

	_, autoErr := g.executeGhCommand(autoArgs...)
	if autoErr == nil {
		g.log.Debug("Auto-merge requested", "pr", prNum, "method", method)
		return nil
	}
	g.log.Warn("Auto-merge unavailable, merging immediately", "pr", prNum, "error", autoErr)

	if _, err := g.executeGhCommand(args...); err != nil {
		return fmt.Errorf("failed to merge pull request #%d: %w", prNum, classifyGhError(err))
	}
	return nil
}

// classifyGhError wraps err with a sentinel when gh's stderr identifies the failure.
func classifyGhError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "could not resolve to a pullrequest"),
		strings.Contains(msg, "no pull requests found"):
		return fmt.Errorf("%w: %w", ErrPRNotFound, err)
	case strings.Contains(msg, "merge conflict"),
		strings.Contains(msg, "not mergeable"):
		return fmt.Errorf("%w: %w", ErrMergeConflict, err)
	case strings.Contains(msg, "is closed"):
		return fmt.Errorf("%w: %w", ErrPRClosed, err)
	}
	return err
}
