package github

import "github.com/jmcampanini/autopr/internal/pr"

// Provider creates and merges pull requests on the hosting service.
// A single Provider serves both creation and merge within one run.
type Provider interface {

	// Name identifies the strategy in logs, e.g. "gh" or "api".
	Name() string

	// CreatePullRequest opens a pull request and returns its number and web URL.
	CreatePullRequest(req pr.Request) (pr.Ref, error)

	// GetPullRequest returns a single pull request by number.
	// Returns an error wrapping ErrPRNotFound when it does not exist.
	GetPullRequest(prNum int) (PullRequest, error)

	// MergePullRequest merges the pull request with method and removes its head branch.
	MergePullRequest(prNum int, method MergeMethod) error
}
