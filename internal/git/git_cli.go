package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// GitCli provides high-level git operations by executing real git commands via the git CLI.
type GitCli struct {
	dryRun     bool
	log        *clog.Logger
	timeout    time.Duration
	workingDir string
}

var _ Git = &GitCli{}

// New creates a new GitCli instance that executes git commands in the specified working directory.
// A zero timeout lets commands run until they exit.
func New(dryRun bool, workingDir string, timeout time.Duration) Git {
	return &GitCli{
		dryRun:     dryRun,
		log:        clog.Default().WithPrefix("git"),
		timeout:    timeout,
		workingDir: workingDir,
	}
}

func (g *GitCli) commandContext() (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), g.timeout)
}

func (g *GitCli) executeGitCommand(args ...string) (string, error) {
	output, err := g.runGitCommand(args...)
	if err != nil {
		g.log.Warn("Git command failed", "args", args, "error", err)
		return "", err
	}
	g.log.Debug("Git command succeeded", "args", args, "output", output)
	return output, nil
}

// runGitCommand runs git and returns its trimmed stdout. Failures are returned
// to the caller without being logged, for commands that answer through the exit code.
func (g *GitCli) runGitCommand(args ...string) (string, error) {
	g.log.Debug("Executing git command", "cmd", "git", "args", args, "workingDir", g.workingDir)

	ctx, cancel := g.commandContext()
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workingDir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), g.timeout)
		}
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// executeMutatingCommand runs a git command that modifies state, unless in dry-run mode.
func (g *GitCli) executeMutatingCommand(errContext string, args ...string) error {
	if g.dryRun {
		g.log.Info("Would execute git command", "cmd", "git", "args", args)
		return nil
	}
	if _, err := g.executeGitCommand(args...); err != nil {
		return fmt.Errorf("%s: %w", errContext, err)
	}
	return nil
}

func (g *GitCli) GetWorktreeRoot() (string, error) {
	output, err := g.executeGitCommand("rev-parse", "--show-toplevel")
	if err != nil {
		if strings.Contains(err.Error(), "not a git repo") {
			// Not in a git repo - this is a valid state, not an error
			return "", nil
		}
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return output, nil
}

func (g *GitCli) GetMainWorktreePath() (string, error) {
	commonDir, err := g.executeGitCommand("rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("failed to get git common dir: %w", err)
	}

	absCommonDir := commonDir
	if !filepath.IsAbs(commonDir) {
		absCommonDir = filepath.Join(g.workingDir, commonDir)
	}

	absCommonDir, err = filepath.Abs(absCommonDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	mainWorktree := filepath.Dir(filepath.Clean(absCommonDir))
	g.log.Debug("Resolved main worktree path", "commonDir", commonDir, "mainWorktree", mainWorktree)
	return mainWorktree, nil
}

func (g *GitCli) GetCurrentBranch() (string, error) {
	output, err := g.executeGitCommand("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return output, nil
}

func (g *GitCli) GetDefaultRemote(fallback string) (string, error) {
	// config --get exits 1 when the key is unset.
	output, err := g.runGitCommand("config", "--get", "remote.pushDefault")
	if err == nil && output != "" {
		g.log.Debug("Found remote.pushDefault", "remote", output)
		return output, nil
	}

	g.log.Debug("No remote.pushDefault configured, using fallback", "fallback", fallback)
	return fallback, nil
}

func (g *GitCli) GetRemoteURL(remoteName string) (string, error) {
	output, err := g.executeGitCommand("remote", "get-url", remoteName)
	if err != nil {
		if strings.Contains(err.Error(), "No such remote") {
			return "", fmt.Errorf("remote '%s' does not exist", remoteName)
		}
		return "", fmt.Errorf("failed to get url of remote '%s': %w", remoteName, err)
	}
	return output, nil
}

// headCommitFormat prints one field per line: SHA, subject, author, committer date.
const headCommitFormat = "--format=%H%n%s%n%an%n%cI"

func (g *GitCli) GetHeadCommit() (Commit, error) {
	output, err := g.executeGitCommand("log", "-1", headCommitFormat)
	if err != nil {
		return Commit{}, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	return parseCommit(output)
}

func parseCommit(output string) (Commit, error) {
	lines := strings.Split(output, "\n")
	if len(lines) < 4 {
		return Commit{}, fmt.Errorf("unexpected commit output: %q", output)
	}
	committedOn, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[3]))
	if err != nil {
		return Commit{}, fmt.Errorf("failed to parse commit date %q: %w", lines[3], err)
	}
	return NewCommit(lines[0], lines[1], committedOn, lines[2]), nil
}

// BranchExists reports whether a local branch exists. show-ref exits 1 for a
// missing ref, which is an answer rather than a failure.
func (g *GitCli) BranchExists(branchName string) (bool, error) {
	args := []string{"show-ref", "--verify", "--quiet", "refs/heads/" + branchName}
	_, err := g.runGitCommand(args...)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		g.log.Debug("Branch does not exist", "branch", branchName)
		return false, nil
	}
	g.log.Warn("Git command failed", "args", args, "error", err)
	return false, fmt.Errorf("failed to check branch %s: %w", branchName, err)
}

func (g *GitCli) CreateBranch(branchName string) error {
	g.log.Debug("Creating branch", "branch", branchName)
	return g.executeMutatingCommand("failed to create branch", "checkout", "-b", branchName)
}

func (g *GitCli) Checkout(ref string) error {
	g.log.Debug("Checking out", "ref", ref)
	return g.executeMutatingCommand("failed to checkout "+ref, "checkout", ref)
}

func (g *GitCli) Add(paths ...string) error {
	g.log.Debug("Staging paths", "paths", paths)
	args := append([]string{"add", "--"}, paths...)
	return g.executeMutatingCommand("failed to stage changes", args...)
}

func (g *GitCli) Commit(message string) error {
	g.log.Debug("Committing", "message", message)
	return g.executeMutatingCommand("failed to commit", "commit", "-m", message)
}

func (g *GitCli) Push(remoteName, branchName string) error {
	g.log.Debug("Pushing branch", "remote", remoteName, "branch", branchName)
	return g.executeMutatingCommand("failed to push", "push", "-u", remoteName, branchName)
}
