package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmcampanini/autopr/internal/config"
	"github.com/jmcampanini/autopr/internal/git"
	"github.com/jmcampanini/autopr/internal/github"
	"github.com/jmcampanini/autopr/internal/pr"
	"github.com/jmcampanini/autopr/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGit implements git.Git for testing
type mockGit struct {
	calls       []string
	pushDefault string

	commitFn func(message string) error
}

func (m *mockGit) GetWorktreeRoot() (string, error) { return "/repo", nil }
func (m *mockGit) GetMainWorktreePath() (string, error) { return "/repo", nil }
func (m *mockGit) GetCurrentBranch() (string, error) { return "main", nil }
func (m *mockGit) GetDefaultRemote(fallback string) (string, error) {
	if m.pushDefault != "" {
		return m.pushDefault, nil
	}
	return fallback, nil
}
func (m *mockGit) GetRemoteURL(string) (string, error) { return "git@github.com:acme/widgets.git", nil }
func (m *mockGit) GetHeadCommit() (git.Commit, error) { return git.Commit{}, nil }
func (m *mockGit) BranchExists(string) (bool, error) { return false, nil }

func (m *mockGit) CreateBranch(branchName string) error {
	m.calls = append(m.calls, "checkout -b "+branchName)
	return nil
}

func (m *mockGit) Checkout(ref string) error {
	m.calls = append(m.calls, "checkout "+ref)
	return nil
}

func (m *mockGit) Add(paths ...string) error {
	m.calls = append(m.calls, "add")
	return nil
}

func (m *mockGit) Commit(message string) error {
	m.calls = append(m.calls, "commit")
	if m.commitFn != nil {
		return m.commitFn(message)
	}
	return nil
}

func (m *mockGit) Push(remoteName, branchName string) error {
	m.calls = append(m.calls, "push "+remoteName)
	return nil
}

// mockProvider implements github.Provider for testing
type mockProvider struct {
	created []pr.Request
	merged  []github.MergeMethod

	getPullRequestFn func(prNum int) (github.PullRequest, error)
	mergeFn          func(prNum int, method github.MergeMethod) error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CreatePullRequest(req pr.Request) (pr.Ref, error) {
	m.created = append(m.created, req)
	return pr.Ref{Number: 42, URL: "https://github.com/acme/widgets/pull/42"}, nil
}

func (m *mockProvider) GetPullRequest(prNum int) (github.PullRequest, error) {
	if m.getPullRequestFn != nil {
		return m.getPullRequestFn(prNum)
	}
	return github.PullRequest{Number: prNum, State: github.PRStateOpen}, nil
}

func (m *mockProvider) MergePullRequest(prNum int, method github.MergeMethod) error {
	m.merged = append(m.merged, method)
	if m.mergeFn != nil {
		return m.mergeFn(prNum, method)
	}
	return nil
}

// newTestCmd creates a command with the run flags parsed from args.
func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	addRunFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd, stdout, stderr
}

func noDelayConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PR.MergeDelay = 0
	return &cfg
}

func TestApplyRunFlags_Defaults(t *testing.T) {
	cmd, _, _ := newTestCmd(t)

	cfg, opts, err := applyRunFlags(cmd.Flags(), config.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.Equal(t, workflow.Options{
		Base:        "main",
		MergeDelay:  5 * time.Second,
		MergeMethod: github.MergeMethodSquash,
		Remote:      "origin",
	}, opts)
}

func TestApplyRunFlags_FlagsOverrideConfig(t *testing.T) {
	cmd, _, _ := newTestCmd(t,
		"--base", "develop",
		"--merge",
		"--merge-method", "Rebase",
		"--merge-delay", "1s",
		"--file", "notes/heartbeat.md",
		"--unique-file",
		"--remote", "upstream",
		"--strategy", "api",
		"--dry-run",
	)
	fileCfg := config.DefaultConfig()
	fileCfg.Content.File = "from_config.txt"
	fileCfg.PR.MergeMethod = "merge"

	cfg, opts, err := applyRunFlags(cmd.Flags(), fileCfg)
	require.NoError(t, err)

	assert.Equal(t, "notes/heartbeat.md", cfg.Content.File)
	assert.True(t, cfg.Content.UniqueFile)
	assert.Equal(t, "rebase", cfg.PR.MergeMethod)
	assert.Equal(t, config.StrategyAPI, cfg.PR.Strategy)
	assert.Equal(t, "upstream", cfg.Git.Remote)

	assert.Equal(t, "develop", opts.Base)
	assert.True(t, opts.Merge)
	assert.True(t, opts.DryRun)
	assert.Equal(t, github.MergeMethodRebase, opts.MergeMethod)
	assert.Equal(t, time.Second, opts.MergeDelay)
	assert.Equal(t, "upstream", opts.Remote)
}

func TestApplyRunFlags_ConfigUsedWhenFlagUnset(t *testing.T) {
	cmd, _, _ := newTestCmd(t)
	fileCfg := config.DefaultConfig()
	fileCfg.PR.MergeMethod = "merge"
	fileCfg.Git.Remote = "fork"

	_, opts, err := applyRunFlags(cmd.Flags(), fileCfg)
	require.NoError(t, err)
	assert.Equal(t, github.MergeMethodMerge, opts.MergeMethod)
	assert.Equal(t, "fork", opts.Remote)
}

func TestApplyRunFlags_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "unknown merge method", args: []string{"--merge-method", "octopus"}, errContains: "unknown merge method"},
		{name: "unknown strategy", args: []string{"--strategy", "smoke-signal"}, errContains: "pr.strategy"},
		{name: "negative delay", args: []string{"--merge-delay", "-1s"}, errContains: "pr.merge_delay"},
		{name: "empty file", args: []string{"--file", ""}, errContains: "content.file"},
		{name: "empty base", args: []string{"--base", ""}, errContains: "--base"},
		{name: "negative pr number", args: []string{"--pr-number", "-3"}, errContains: "--pr-number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, _ := newTestCmd(t, tt.args...)

			_, _, err := applyRunFlags(cmd.Flags(), config.DefaultConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestRunAutoPR_PrintsURLToStdout(t *testing.T) {
	dir := t.TempDir()
	cmd, stdout, stderr := newTestCmd(t)
	gitMock := &mockGit{}
	provider := &mockProvider{}

	err := runAutoPRWithDeps(cmd, &runDeps{git: gitMock, provider: provider, workDir: dir}, noDelayConfig())
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/acme/widgets/pull/42\n", stdout.String())
	assert.Contains(t, stderr.String(), "Pull request created")
	assert.Contains(t, stderr.String(), "skipped")
	assert.Empty(t, provider.merged, "no merge without --merge")

	_, statErr := os.Stat(filepath.Join(dir, "dummy_file.txt"))
	assert.NoError(t, statErr)
	require.NotEmpty(t, gitMock.calls)
	assert.Equal(t, "checkout main", gitMock.calls[len(gitMock.calls)-1])
}

func TestRunAutoPR_Merge(t *testing.T) {
	cmd, stdout, stderr := newTestCmd(t, "--merge", "--merge-method", "merge")
	provider := &mockProvider{}

	err := runAutoPRWithDeps(cmd, &runDeps{git: &mockGit{}, provider: provider, workDir: t.TempDir()}, noDelayConfig())
	require.NoError(t, err)

	assert.Equal(t, []github.MergeMethod{github.MergeMethodMerge}, provider.merged)
	assert.Equal(t, "https://github.com/acme/widgets/pull/42\n", stdout.String())
	assert.Contains(t, stderr.String(), "merged")
}

func TestRunAutoPR_MergeFailureExitsNonZero(t *testing.T) {
	cmd, stdout, stderr := newTestCmd(t, "--merge")
	provider := &mockProvider{
		mergeFn: func(int, github.MergeMethod) error { return github.ErrMergeConflict },
	}

	err := runAutoPRWithDeps(cmd, &runDeps{git: &mockGit{}, provider: provider, workDir: t.TempDir()}, noDelayConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrMergeFailed)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "failed")
	assert.Contains(t, stderr.String(), "https://github.com/acme/widgets/pull/42")
}

func TestRunAutoPR_DryRunMerge(t *testing.T) {
	cmd, _, stderr := newTestCmd(t, "--dry-run", "--merge")
	provider := &mockProvider{}

	err := runAutoPRWithDeps(cmd, &runDeps{git: &mockGit{}, provider: provider, workDir: t.TempDir()}, noDelayConfig())
	require.NoError(t, err)

	assert.Empty(t, provider.merged)
	assert.Contains(t, stderr.String(), "would merge")
	assert.NotContains(t, stderr.String(), "merged")
}

func TestRunAutoPR_GitFailure(t *testing.T) {
	cmd, stdout, _ := newTestCmd(t)
	gitMock := &mockGit{
		commitFn: func(string) error {
			return errors.New("git commit -m msg failed: exit status 1: nothing to commit")
		},
	}
	provider := &mockProvider{}

	err := runAutoPRWithDeps(cmd, &runDeps{git: gitMock, provider: provider, workDir: t.TempDir()}, noDelayConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git commit")
	assert.Empty(t, stdout.String())
	assert.Empty(t, provider.created)
}

func TestRunAutoPR_MergeOnly(t *testing.T) {
	cmd, stdout, _ := newTestCmd(t, "--pr-number", "7")
	gitMock := &mockGit{}
	provider := &mockProvider{
		getPullRequestFn: func(prNum int) (github.PullRequest, error) {
			return github.PullRequest{
				Number: prNum,
				State:  github.PRStateOpen,
				URL:    "https://github.com/acme/widgets/pull/7",
			}, nil
		},
	}

	err := runAutoPRWithDeps(cmd, &runDeps{git: gitMock, provider: provider, workDir: t.TempDir()}, noDelayConfig())
	require.NoError(t, err)

	assert.Empty(t, gitMock.calls, "merge-only mode runs no git commands")
	assert.Empty(t, provider.created)
	assert.Equal(t, []github.MergeMethod{github.MergeMethodSquash}, provider.merged)
	assert.Equal(t, "https://github.com/acme/widgets/pull/7\n", stdout.String())
}

func TestRunAutoPR_InvalidFlagsFailBeforeWork(t *testing.T) {
	cmd, _, _ := newTestCmd(t, "--merge-method", "octopus")
	gitMock := &mockGit{}

	err := runAutoPRWithDeps(cmd, &runDeps{git: gitMock, provider: &mockProvider{}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, github.ErrUnknownMergeMethod)
	assert.Empty(t, gitMock.calls)
}

func TestResolveRemote(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		configToml  string
		pushDefault string
		want        string
	}{
		{
			name: "built-in default",
			want: "origin",
		},
		{
			name:        "pushDefault replaces built-in default",
			pushDefault: "fork",
			want:        "fork",
		},
		{
			name:        "config file wins over pushDefault",
			configToml:  "[git]\nremote = \"upstream\"\n",
			pushDefault: "fork",
			want:        "upstream",
		},
		{
			name:        "config file set to origin still wins",
			configToml:  "[git]\nremote = \"origin\"\n",
			pushDefault: "fork",
			want:        "origin",
		},
		{
			name:        "flag wins over everything",
			args:        []string{"--remote", "mirror"},
			configToml:  "[git]\nremote = \"upstream\"\n",
			pushDefault: "fork",
			want:        "mirror",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			if tt.configToml != "" {
				path := filepath.Join(t.TempDir(), "autopr.toml")
				require.NoError(t, os.WriteFile(path, []byte(tt.configToml), 0644))
				paths = append(paths, path)
			}
			loaded, err := config.NewDefaultLoader().Load(paths)
			require.NoError(t, err)

			cmd, _, _ := newTestCmd(t, tt.args...)
			_, opts, err := applyRunFlags(cmd.Flags(), loaded.Config)
			require.NoError(t, err)

			got, err := resolveRemote(cmd.Flags(), loaded, opts.Remote, &mockGit{pushDefault: tt.pushDefault})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
