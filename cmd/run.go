package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jmcampanini/autopr/internal/config"
	"github.com/jmcampanini/autopr/internal/git"
	"github.com/jmcampanini/autopr/internal/github"
	"github.com/jmcampanini/autopr/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagBase        = "base"
	flagDryRun      = "dry-run"
	flagFile        = "file"
	flagMerge       = "merge"
	flagMergeDelay  = "merge-delay"
	flagMergeMethod = "merge-method"
	flagPRNumber    = "pr-number"
	flagRemote      = "remote"
	flagStrategy    = "strategy"
	flagUniqueFile  = "unique-file"
)

// addRunFlags registers the workflow flags. Defaults shown in help come from
// DefaultConfig; config files only apply where a flag was not given.
func addRunFlags(fs *pflag.FlagSet) {
	defaults := config.DefaultConfig()

	fs.String(flagBase, "main", "Base branch the pull request targets")
	fs.Bool(flagDryRun, false, "Log git and GitHub mutations instead of executing them")
	fs.String(flagFile, defaults.Content.File, "File that receives the generated content")
	fs.Bool(flagMerge, false, "Merge the pull request after creating it")
	fs.Duration(flagMergeDelay, defaults.PR.MergeDelay, "Wait between creating and merging the pull request")
	fs.String(flagMergeMethod, defaults.PR.MergeMethod, "Merge method: merge, squash or rebase")
	fs.Int(flagPRNumber, 0, "Merge this existing pull request instead of creating one")
	fs.String(flagRemote, defaults.Git.Remote, "Remote the branch is pushed to")
	fs.String(flagStrategy, string(defaults.PR.Strategy), "How to reach GitHub: auto, cli or api")
	fs.Bool(flagUniqueFile, defaults.Content.UniqueFile, "Write to a new timestamped file on every run")
}

// applyRunFlags overlays explicitly set flags on cfg and returns the run options.
func applyRunFlags(fs *pflag.FlagSet, cfg config.Config) (config.Config, workflow.Options, error) {
	var opts workflow.Options
	var err error

	if fs.Changed(flagFile) {
		cfg.Content.File, _ = fs.GetString(flagFile)
	}
	if fs.Changed(flagUniqueFile) {
		cfg.Content.UniqueFile, _ = fs.GetBool(flagUniqueFile)
	}
	if fs.Changed(flagMergeDelay) {
		cfg.PR.MergeDelay, _ = fs.GetDuration(flagMergeDelay)
	}
	if fs.Changed(flagMergeMethod) {
		cfg.PR.MergeMethod, _ = fs.GetString(flagMergeMethod)
	}
	if fs.Changed(flagRemote) {
		cfg.Git.Remote, _ = fs.GetString(flagRemote)
	}
	if fs.Changed(flagStrategy) {
		strategy, _ := fs.GetString(flagStrategy)
		cfg.PR.Strategy = config.Strategy(strategy)
	}

	if opts.MergeMethod, err = github.ParseMergeMethod(cfg.PR.MergeMethod); err != nil {
		return cfg, opts, err
	}
	cfg.PR.MergeMethod = opts.MergeMethod.String()
	if err := cfg.Validate(); err != nil {
		return cfg, opts, fmt.Errorf("invalid configuration: %w", err)
	}

	opts.Base, _ = fs.GetString(flagBase)
	opts.DryRun, _ = fs.GetBool(flagDryRun)
	opts.Merge, _ = fs.GetBool(flagMerge)
	opts.MergeDelay = cfg.PR.MergeDelay
	opts.PRNumber, _ = fs.GetInt(flagPRNumber)
	opts.Remote = cfg.Git.Remote

	if opts.Base == "" {
		return cfg, opts, fmt.Errorf("--%s cannot be empty", flagBase)
	}
	if opts.PRNumber < 0 {
		return cfg, opts, fmt.Errorf("--%s must be positive, got %d", flagPRNumber, opts.PRNumber)
	}
	return cfg, opts, nil
}

func runAutoPR(cmd *cobra.Command, _ []string) error {
	return runAutoPRWithDeps(cmd, nil, nil)
}

// runDeps holds injectable dependencies for testing.
type runDeps struct {
	git      git.Git
	provider github.Provider
	workDir  string
}

// runContext holds the resolved configuration and clients for one run.
type runContext struct {
	cfg       config.Config
	gitClient git.Git
	opts      workflow.Options
	provider  github.Provider
}

func runAutoPRWithDeps(cmd *cobra.Command, deps *runDeps, cfg *config.Config) error {
	ctx, err := initRunContext(cmd, deps, cfg)
	if err != nil {
		return err
	}

	runner := workflow.NewRunner(ctx.cfg, ctx.gitClient, ctx.provider)
	res, runErr := runner.Run(ctx.opts)

	printSummary(cmd.ErrOrStderr(), ctx.opts, res, runErr)
	if runErr != nil {
		return runErr
	}

	switch {
	case res.PR.URL != "":
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.PR.URL)
	case res.PR.Number > 0:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "#%d\n", res.PR.Number)
	}
	return err
}

// initRunContext initializes the context from deps (for testing) or from environment.
func initRunContext(cmd *cobra.Command, deps *runDeps, cfg *config.Config) (*runContext, error) {
	if deps != nil {
		loadedCfg := config.DefaultConfig()
		if cfg != nil {
			loadedCfg = *cfg
		}
		finalCfg, opts, err := applyRunFlags(cmd.Flags(), loadedCfg)
		if err != nil {
			return nil, err
		}
		opts.WorkDir = deps.workDir
		return &runContext{
			cfg:       finalCfg,
			gitClient: deps.git,
			opts:      opts,
			provider:  deps.provider,
		}, nil
	}

	return initRunContextFromEnv(cmd)
}

// initRunContextFromEnv loads config and creates clients from the environment.
func initRunContextFromEnv(cmd *cobra.Command) (*runContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	loaded, err := loadConfig(cwd)
	if err != nil {
		return nil, err
	}

	cfg, opts, err := applyRunFlags(cmd.Flags(), loaded.Config)
	if err != nil {
		return nil, err
	}
	opts.WorkDir = cwd

	// Recreate git client with configured timeout
	gitClient := git.New(opts.DryRun, cwd, cfg.Git.Timeout)
	if opts.Remote, err = resolveRemote(cmd.Flags(), loaded, opts.Remote, gitClient); err != nil {
		return nil, fmt.Errorf("failed to resolve remote: %w", err)
	}

	remote := opts.Remote
	selector := github.NewSelector(cfg.PR, cwd, cfg.Git.Timeout, opts.DryRun,
		func() (string, error) { return gitClient.GetRemoteURL(remote) },
		cmd.InOrStdin(), cmd.ErrOrStderr())
	provider, err := selector.Select()
	if err != nil {
		return nil, fmt.Errorf("failed to set up GitHub access: %w", err)
	}

	return &runContext{
		cfg:       cfg,
		gitClient: gitClient,
		opts:      opts,
		provider:  provider,
	}, nil
}

// resolveRemote picks the push remote: --remote first, then git.remote from a
// config file, then git's remote.pushDefault, and finally the built-in default.
func resolveRemote(fs *pflag.FlagSet, loaded config.LoadResult, remote string, gitClient git.Git) (string, error) {
	if fs.Changed(flagRemote) || loaded.IsDefined("git", "remote") {
		return remote, nil
	}
	return gitClient.GetDefaultRemote(remote)
}

// loadConfig discovers and loads autopr.toml files for the repository containing cwd.
func loadConfig(cwd string) (config.LoadResult, error) {
	// Create git client with default timeout first
	gitClient := git.New(false, cwd, config.DefaultConfig().Git.Timeout)

	worktreeRoot, err := gitClient.GetWorktreeRoot()
	if err != nil {
		return config.LoadResult{}, fmt.Errorf("git error: %w", err)
	}
	if worktreeRoot == "" {
		return config.LoadResult{}, fmt.Errorf("autopr must be run inside a git repository")
	}

	mainWorktreePath, err := gitClient.GetMainWorktreePath()
	if err != nil {
		return config.LoadResult{}, fmt.Errorf("failed to get main worktree path: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config.LoadResult{}, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPaths := config.ConfigPaths(cwd, mainWorktreePath, homeDir)
	loader := config.NewDefaultLoader()
	loadResult, err := loader.Load(configPaths)
	if err != nil {
		return config.LoadResult{}, fmt.Errorf("failed to load config: %w", err)
	}
	return loadResult, nil
}

var (
	purple     = lipgloss.Color("99")
	gray       = lipgloss.Color("245")
	red        = lipgloss.Color("160")
	green      = lipgloss.Color("35")
	titleStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(gray).Width(8)
	okStyle    = lipgloss.NewStyle().Foreground(green)
	failStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)
)

// printSummary renders a short report of the run to w (stderr).
func printSummary(w io.Writer, opts workflow.Options, res workflow.Result, runErr error) {
	if res.Branch == "" && res.PR.Number == 0 {
		return
	}

	title := "Pull request created"
	if opts.PRNumber > 0 {
		title = "Pull request"
	}
	if opts.DryRun {
		title += " (dry run)"
	}

	lines := []string{titleStyle.Render(title)}
	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(label)+" "+value)
	}

	if res.PR.Number > 0 {
		row("number", fmt.Sprintf("#%d", res.PR.Number))
	}
	if res.PR.URL != "" {
		row("url", res.PR.URL)
	}
	if res.Branch != "" {
		row("branch", res.Branch)
	}
	if res.File != "" {
		row("file", fmt.Sprintf("%s (%s)", res.File, humanize.Bytes(uint64(res.Bytes))))
	}

	switch {
	case res.Merged:
		row("merge", okStyle.Render("merged"))
	case res.MergeAttempted:
		row("merge", failStyle.Render("failed"))
	case opts.DryRun && (opts.Merge || opts.PRNumber > 0):
		row("merge", "would merge")
	case opts.Merge:
		row("merge", failStyle.Render("not attempted"))
	default:
		row("merge", "skipped")
	}
	if runErr != nil {
		row("error", failStyle.Render(runErr.Error()))
	}

	_, _ = fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
}
