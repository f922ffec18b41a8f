package config

import "time"

// DefaultConfig returns sensible defaults for all configuration.
func DefaultConfig() Config {
	return Config{
		Branch: BranchConfig{
			Prefix: "auto-update-",
		},
		Content: ContentConfig{
			CommitMessage: "Update dummy file with automated changes",
			File:          "dummy_file.txt",
			UniqueFile:    false,
		},
		Git: GitConfig{
			Remote:  "origin",
			Timeout: 30 * time.Second,
		},
		PR: PRConfig{
			MergeDelay:  5 * time.Second,
			MergeMethod: "squash",
			Strategy:    StrategyAuto,
			Title:       "Automated update to dummy file",
			TokenEnv:    []string{"GITHUB_TOKEN", "GH_TOKEN"},
		},
	}
}
