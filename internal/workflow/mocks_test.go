package workflow

import (
	"fmt"
	"strings"

	"github.com/jmcampanini/autopr/internal/git"
	"github.com/jmcampanini/autopr/internal/github"
	"github.com/jmcampanini/autopr/internal/pr"
)

// callLog records the order of calls across mocks.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// mockGit implements git.Git for testing
type mockGit struct {
	log *callLog

	addFn          func(paths ...string) error
	branchExistsFn func(branchName string) (bool, error)
	checkoutFn     func(ref string) error
	commitFn       func(message string) error
	createBranchFn func(branchName string) error
	pushFn         func(remoteName, branchName string) error
}

var _ git.Git = &mockGit{}

func (m *mockGit) GetWorktreeRoot() (string, error) { return "/repo", nil }
func (m *mockGit) GetMainWorktreePath() (string, error) { return "/repo", nil }
func (m *mockGit) GetCurrentBranch() (string, error) { return "main", nil }
func (m *mockGit) GetDefaultRemote(fallback string) (string, error) {
	return fallback, nil
}
func (m *mockGit) GetRemoteURL(string) (string, error) {
	return "git@github.com:acme/widgets.git", nil
}
func (m *mockGit) GetHeadCommit() (git.Commit, error) { return git.Commit{}, nil }

func (m *mockGit) BranchExists(branchName string) (bool, error) {
	if m.branchExistsFn != nil {
		return m.branchExistsFn(branchName)
	}
	return false, nil
}

func (m *mockGit) CreateBranch(branchName string) error {
	m.log.add("git checkout -b %s", branchName)
	if m.createBranchFn != nil {
		return m.createBranchFn(branchName)
	}
	return nil
}

func (m *mockGit) Checkout(ref string) error {
	m.log.add("git checkout %s", ref)
	if m.checkoutFn != nil {
		return m.checkoutFn(ref)
	}
	return nil
}

func (m *mockGit) Add(paths ...string) error {
	m.log.add("git add %s", strings.Join(paths, " "))
	if m.addFn != nil {
		return m.addFn(paths...)
	}
	return nil
}

func (m *mockGit) Commit(message string) error {
	m.log.add("git commit -m %s", message)
	if m.commitFn != nil {
		return m.commitFn(message)
	}
	return nil
}

func (m *mockGit) Push(remoteName, branchName string) error {
	m.log.add("git push -u %s %s", remoteName, branchName)
	if m.pushFn != nil {
		return m.pushFn(remoteName, branchName)
	}
	return nil
}

// mockProvider implements github.Provider for testing
type mockProvider struct {
	log  *callLog
	name string

	createFn func(req pr.Request) (pr.Ref, error)
	getFn    func(prNum int) (github.PullRequest, error)
	mergeFn  func(prNum int, method github.MergeMethod) error

	requests []pr.Request
}

var _ github.Provider = &mockProvider{}

func (m *mockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockProvider) CreatePullRequest(req pr.Request) (pr.Ref, error) {
	m.log.add("%s create %s -> %s", m.Name(), req.Head, req.Base)
	m.requests = append(m.requests, req)
	if m.createFn != nil {
		return m.createFn(req)
	}
	return pr.Ref{Number: 42, URL: "https://github.com/acme/widgets/pull/42"}, nil
}

func (m *mockProvider) GetPullRequest(prNum int) (github.PullRequest, error) {
	m.log.add("%s get #%d", m.Name(), prNum)
	if m.getFn != nil {
		return m.getFn(prNum)
	}
	return github.PullRequest{Number: prNum, State: github.PRStateOpen}, nil
}

func (m *mockProvider) MergePullRequest(prNum int, method github.MergeMethod) error {
	m.log.add("%s merge #%d --%s", m.Name(), prNum, method)
	if m.mergeFn != nil {
		return m.mergeFn(prNum, method)
	}
	return nil
}
