package git

import "time"

type Commit struct {
	CommittedBy string
	CommittedOn time.Time
	SHA         string
	Subject     string
}

func NewCommit(sha, subject string, committedOn time.Time, committedBy string) Commit {
	return Commit{
		CommittedBy: committedBy,
		CommittedOn: committedOn,
		SHA:         sha,
		Subject:     subject,
	}
}

// ShortSHA returns the first seven characters of the SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

type Git interface {

	// GetWorktreeRoot returns the absolute path to the root of the git tree.
	// If not in a git repository, returns ("", nil).
	// Returns an error only if the git command itself fails (e.g., git not installed).
	GetWorktreeRoot() (string, error)

	// GetMainWorktreePath returns the absolute path to the main (primary) worktree.
	GetMainWorktreePath() (string, error)

	// GetCurrentBranch returns the current branch name.
	// Returns "HEAD" if in detached HEAD state.
	GetCurrentBranch() (string, error)

	// GetDefaultRemote returns the value of git config remote.pushDefault if set,
	// otherwise returns the fallback parameter.
	GetDefaultRemote(fallback string) (string, error)

	// GetRemoteURL returns the fetch URL configured for the remote.
	GetRemoteURL(remoteName string) (string, error)

	// GetHeadCommit returns metadata for the commit at HEAD.
	GetHeadCommit() (Commit, error)

	// BranchExists checks if a local branch with the given name exists.
	BranchExists(branchName string) (bool, error)

	// CreateBranch creates a branch from the current HEAD and checks it out.
	// Will mutate the current git state.
	CreateBranch(branchName string) error

	// Checkout switches the working tree to ref.
	// Will mutate the current git state.
	Checkout(ref string) error

	// Add stages the given paths.
	// Will mutate the current git state.
	Add(paths ...string) error

	// Commit records the staged changes with message.
	// Will mutate the current git state.
	Commit(message string) error

	// Push pushes branchName to remoteName and sets it as upstream.
	// Will mutate the remote.
	Push(remoteName, branchName string) error
}
