package naming

import (
	"regexp"
	"strings"
	"time"

	"github.com/jmcampanini/autopr/internal/config"
)

// TimestampLayout renders run timestamps as YYYYMMDDHHMMSS.
const TimestampLayout = "20060102150405"

var timestampRegex = regexp.MustCompile(`^[0-9]{14}$`)

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// BranchNameGenerator creates feature branch names from the run timestamp.
type BranchNameGenerator struct {
	prefix string
}

// NewBranchNameGenerator creates a generator from config.
func NewBranchNameGenerator(branchCfg config.BranchConfig) *BranchNameGenerator {
	return &BranchNameGenerator{prefix: branchCfg.Prefix}
}

// Generate returns prefix + YYYYMMDDHHMMSS for now.
// Two runs within the same second produce the same name.
func (g *BranchNameGenerator) Generate(now time.Time) string {
	return g.prefix + Timestamp(now)
}

// IsGenerated reports whether name looks like a branch produced by Generate.
func (g *BranchNameGenerator) IsGenerated(name string) bool {
	suffix, ok := strings.CutPrefix(name, g.prefix)
	return ok && timestampRegex.MatchString(suffix)
}
