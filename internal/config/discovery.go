package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName = "autopr.toml"

	// EnvConfigPath names an extra config file applied with the highest priority.
	EnvConfigPath = "AUTOPR_CONFIG"
)

// ConfigPaths returns the ordered list of config file paths to check.
// Paths are ordered from lowest to highest priority, so that when decoded
// sequentially, each subsequent file overrides values from previous files.
//
// Order (lowest to highest priority):
//  1. File in XDG config directory (~/.config/autopr/autopr.toml)
//  2. Files in directories between the home directory and the repository root
//  3. File in the repository root
//  4. File in the current working directory (if different from the repository root)
//  5. The file named by $AUTOPR_CONFIG, if set
//
// An empty repoRoot or homeDir skips the corresponding entries.
func ConfigPaths(cwd, repoRoot, homeDir string) []string {
	var paths []string
	seen := make(map[string]bool)

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}
	addDir := func(dir string) {
		if dir == "" {
			return
		}
		add(filepath.Join(dir, configFileName))
	}

	if xdgConfigDir, err := os.UserConfigDir(); err == nil {
		addDir(filepath.Join(xdgConfigDir, "autopr"))
	}

	for _, dir := range ancestorsBetween(homeDir, repoRoot) {
		addDir(dir)
	}

	addDir(repoRoot)
	addDir(cwd)
	add(os.Getenv(EnvConfigPath))

	return paths
}

// ancestorsBetween returns the directories from homeDir down to the parent of
// dir, outermost first. It returns nil when dir is not inside homeDir.
func ancestorsBetween(homeDir, dir string) []string {
	if homeDir == "" || dir == "" {
		return nil
	}
	rel, err := filepath.Rel(homeDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}

	var dirs []string
	for current := filepath.Dir(dir); ; current = filepath.Dir(current) {
		dirs = append(dirs, current)
		if current == homeDir || current == filepath.Dir(current) {
			break
		}
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
