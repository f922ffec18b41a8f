package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadResult contains the loaded config and metadata about the load.
type LoadResult struct {
	Config      Config
	SourcePaths []string // paths that were successfully loaded, in order applied

	defined map[string]bool
}

// IsDefined reports whether any loaded file set the key, e.g. IsDefined("git", "remote").
// Values that only come from DefaultConfig are not defined.
func (r LoadResult) IsDefined(key ...string) bool {
	return r.defined[toml.Key(key).String()]
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	// Exists returns true if the path exists and is a file (not a directory).
	Exists(path string) bool
}

// OSFileSystem implements FileSystem using the real OS.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Loader reads autopr.toml files and overlays them on the defaults.
type Loader struct {
	fs  FileSystem
	log *log.Logger
}

func NewLoader(fs FileSystem) *Loader {
	return &Loader{fs: fs, log: log.Default().WithPrefix("config")}
}

// NewDefaultLoader creates a Loader backed by the real file system.
func NewDefaultLoader() *Loader {
	return NewLoader(OSFileSystem{})
}

// Load decodes every existing file in paths on top of DefaultConfig.
// Paths must be ordered from lowest to highest priority. Missing files are skipped.
func (l *Loader) Load(paths []string) (LoadResult, error) {
	cfg := DefaultConfig()
	var sourcePaths []string
	defined := map[string]bool{}

	for _, path := range paths {
		if !l.fs.Exists(path) {
			continue
		}

		metadata, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return LoadResult{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
			l.log.Warn("Ignoring unknown autopr keys",
				"path", path, "keys", undecoded, "sections", "branch, content, git, pr")
		}
		for _, key := range metadata.Keys() {
			defined[key.String()] = true
		}

		l.log.Debug("Loaded autopr config", "path", path)
		sourcePaths = append(sourcePaths, path)
	}

	if err := cfg.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf("invalid config: %w", err)
	}

	return LoadResult{
		Config:      cfg,
		SourcePaths: sourcePaths,
		defined:     defined,
	}, nil
}
