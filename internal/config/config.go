package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Strategy names which transport is used to talk to the hosting provider.
type Strategy string

const (
	StrategyAuto Strategy = "auto" // gh CLI when installed, REST API otherwise
	StrategyCLI  Strategy = "cli"
	StrategyAPI  Strategy = "api"
)

// MergeMethods lists the merge methods accepted by pr.merge_method.
var MergeMethods = []string{"merge", "squash", "rebase"}

// Config represents the complete autopr configuration.
type Config struct {
	Branch  BranchConfig  `toml:"branch"`
	Content ContentConfig `toml:"content"`
	Git     GitConfig     `toml:"git"`
	PR      PRConfig      `toml:"pr"`
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c Config) Validate() error {
	if c.Git.Timeout < 0 {
		return errors.New("git.timeout cannot be negative")
	}
	if c.Git.Remote == "" {
		return errors.New("git.remote cannot be empty")
	}
	if c.Branch.Prefix == "" {
		return errors.New("branch.prefix cannot be empty")
	}
	if c.Content.File == "" {
		return errors.New("content.file cannot be empty")
	}
	if c.Content.CommitMessage == "" {
		return errors.New("content.commit_message cannot be empty")
	}
	if c.PR.Title == "" {
		return errors.New("pr.title cannot be empty")
	}
	if !slices.Contains(MergeMethods, c.PR.MergeMethod) {
		return fmt.Errorf("pr.merge_method must be one of %v, got %q", MergeMethods, c.PR.MergeMethod)
	}
	if c.PR.MergeDelay < 0 {
		return errors.New("pr.merge_delay cannot be negative")
	}
	switch c.PR.Strategy {
	case StrategyAuto, StrategyCLI, StrategyAPI:
	default:
		return fmt.Errorf("pr.strategy must be one of auto, cli, api, got %q", c.PR.Strategy)
	}
	return nil
}

// BranchConfig configures feature branch naming.
type BranchConfig struct {
	Prefix string `toml:"prefix"` // e.g., "auto-update-"
}

// ContentConfig configures the placeholder file committed on every run.
type ContentConfig struct {
	CommitMessage string `toml:"commit_message"`
	File          string `toml:"file"` // absolute, or relative to the directory autopr runs in
	// UniqueFile appends the run timestamp to the file name,
	// e.g. "dummy_file.txt" -> "dummy_file_20240102030405.txt".
	UniqueFile bool `toml:"unique_file"`
}

// GitConfig configures git command execution.
type GitConfig struct {
	Remote  string        `toml:"remote"`
	Timeout time.Duration `toml:"timeout"` // 0 disables the timeout
}

// PRConfig configures pull request creation and merging.
type PRConfig struct {
	MergeDelay  time.Duration `toml:"merge_delay"`  // blind wait between creation and merge
	MergeMethod string        `toml:"merge_method"` // merge, squash or rebase
	Strategy    Strategy      `toml:"strategy"`
	Title       string        `toml:"title"`
	// TokenEnv lists environment variables checked, in order, for an API token
	// when the gh CLI cannot supply one.
	TokenEnv []string `toml:"token_env"`
}
