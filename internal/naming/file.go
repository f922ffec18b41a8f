package naming

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/jmcampanini/autopr/internal/config"
)

// ContentFileNamer decides where the placeholder content of a run is written.
type ContentFileNamer struct {
	path   string
	unique bool
}

// NewContentFileNamer creates a namer from config.
func NewContentFileNamer(contentCfg config.ContentConfig) *ContentFileNamer {
	return &ContentFileNamer{
		path:   contentCfg.File,
		unique: contentCfg.UniqueFile,
	}
}

// Generate returns the configured path, or, in unique mode, the path with
// "_YYYYMMDDHHMMSS" inserted before the extension.
//
//	dummy_file.txt    -> dummy_file_20240102030405.txt
//	notes/heartbeat   -> notes/heartbeat_20240102030405
func (n *ContentFileNamer) Generate(now time.Time) string {
	if !n.unique {
		return n.path
	}

	dir, base := filepath.Split(n.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfiles such as ".keep" have no stem; treat the whole name as the stem
		stem, ext = base, ""
	}
	return dir + stem + "_" + Timestamp(now) + ext
}
