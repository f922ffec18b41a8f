package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	clog "github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v57/github"
	"github.com/jmcampanini/autopr/internal/pr"
	"golang.org/x/oauth2"
)

// GitHubAPI provides GitHub operations through the REST API.
// It is used when the gh CLI is unavailable.
type GitHubAPI struct {
	client  *gogithub.Client
	dryRun  bool
	log     *clog.Logger
	repo    Repository
	timeout time.Duration
}

var _ Provider = &GitHubAPI{}

// NewAPI creates a REST client for repo authenticated with token.
// An empty token is accepted only in dry-run mode, where nothing is mutated.
// Enterprise hosts are addressed at https://<host>/api/v3/.
func NewAPI(token string, repo Repository, dryRun bool, timeout time.Duration) (*GitHubAPI, error) {
	if token == "" && !dryRun {
		return nil, ErrNoToken
	}
	if repo.Owner == "" || repo.Name == "" {
		return nil, errors.New("repository owner and name are required")
	}

	var tc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(context.Background(), ts)
	}
	client := gogithub.NewClient(tc)

	if repo.IsEnterprise() {
		baseURL := fmt.Sprintf("https://%s/api/v3/", repo.Host)
		uploadURL := fmt.Sprintf("https://%s/api/uploads/", repo.Host)
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, uploadURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise host %s: %w", repo.Host, err)
		}
	}

	return &GitHubAPI{
		client:  client,
		dryRun:  dryRun,
		log:     clog.Default().WithPrefix("github"),
		repo:    repo,
		timeout: timeout,
	}, nil
}

func (a *GitHubAPI) Name() string {
	return "api"
}

func (a *GitHubAPI) CreatePullRequest(req pr.Request) (pr.Ref, error) {
	if a.dryRun {
		a.log.Info("Would create pull request via API", "repo", a.repo.FullName(), "head", req.Head, "base", req.Base)
		return pr.Ref{}, nil
	}

	ctx, cancel := timeoutContext(a.timeout)
	defer cancel()

	a.log.Debug("Creating pull request via API", "repo", a.repo.FullName(), "head", req.Head, "base", req.Base)
	created, _, err := a.client.PullRequests.Create(ctx, a.repo.Owner, a.repo.Name, &gogithub.NewPullRequest{
		Base:  gogithub.String(req.Base),
		Body:  gogithub.String(req.Body),
		Head:  gogithub.String(req.Head),
		Title: gogithub.String(req.Title),
	})
	if err != nil {
		return pr.Ref{}, fmt.Errorf("failed to create pull request: %w", err)
	}

	return pr.Ref{Number: created.GetNumber(), URL: created.GetHTMLURL()}, nil
}

func (a *GitHubAPI) GetPullRequest(prNum int) (PullRequest, error) {
	ctx, cancel := timeoutContext(a.timeout)
	defer cancel()

	apiPR, resp, err := a.client.PullRequests.Get(ctx, a.repo.Owner, a.repo.Name, prNum)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return PullRequest{}, fmt.Errorf("failed to get pull request #%d: %w", prNum, ErrPRNotFound)
		}
		return PullRequest{}, fmt.Errorf("failed to get pull request #%d: %w", prNum, err)
	}
	return fromAPI(apiPR), nil
}

// MergePullRequest merges and then deletes the head branch. A failed branch
// deletion is logged and does not fail the merge.
func (a *GitHubAPI) MergePullRequest(prNum int, method MergeMethod) error {
	if a.dryRun {
		a.log.Info("Would merge pull request via API", "repo", a.repo.FullName(), "pr", prNum, "method", method)
		return nil
	}

	ctx, cancel := timeoutContext(a.timeout)
	defer cancel()

	result, resp, err := a.client.PullRequests.Merge(ctx, a.repo.Owner, a.repo.Name, prNum, "",
		&gogithub.PullRequestOptions{MergeMethod: method.String()})
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return fmt.Errorf("failed to merge pull request #%d: %w", prNum, ErrPRNotFound)
			case http.StatusMethodNotAllowed:
				return fmt.Errorf("failed to merge pull request #%d: %w: %w", prNum, ErrPRClosed, err)
			case http.StatusConflict:
				return fmt.Errorf("failed to merge pull request #%d: %w: %w", prNum, ErrMergeConflict, err)
			}
		}
		return fmt.Errorf("failed to merge pull request #%d: %w", prNum, err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("pull request #%d was not merged: %s", prNum, result.GetMessage())
	}

	a.deleteHeadBranch(ctx, prNum)
	return nil
}

func (a *GitHubAPI) deleteHeadBranch(ctx context.Context, prNum int) {
	apiPR, _, err := a.client.PullRequests.Get(ctx, a.repo.Owner, a.repo.Name, prNum)
	if err != nil {
		a.log.Warn("Failed to look up branch for deletion", "pr", prNum, "error", err)
		return
	}
	ref := apiPR.GetHead().GetRef()
	if ref == "" {
		return
	}
	if _, err := a.client.Git.DeleteRef(ctx, a.repo.Owner, a.repo.Name, "heads/"+ref); err != nil {
		a.log.Warn("Failed to delete branch after merge", "pr", prNum, "branch", ref, "error", err)
		return
	}
	a.log.Debug("Deleted branch", "branch", ref)
}
