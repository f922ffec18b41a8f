package content

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Vocabulary is the fixed word list sentences are drawn from.
var Vocabulary = []string{
	"automated", "change", "update", "modification", "enhancement",
	"improvement", "feature", "fix", "patch", "revision",
}

const (
	// Prefix starts every generated sentence.
	Prefix = "This is an "

	// TimestampLayout renders the trailing timestamp with microsecond precision.
	TimestampLayout = "2006-01-02 15:04:05.000000"

	MinWords = 5
	MaxWords = 10
)

// Generator produces placeholder sentences.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewGeneratorWithRand returns a Generator using rng, for reproducible output.
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Sentence returns "This is an " followed by MinWords..MaxWords vocabulary
// words, each followed by a space, and "at <now>".
func (g *Generator) Sentence(now time.Time) string {
	count := MinWords + g.rng.IntN(MaxWords-MinWords+1)

	var b strings.Builder
	b.WriteString(Prefix)
	for range count {
		b.WriteString(Vocabulary[g.rng.IntN(len(Vocabulary))])
		b.WriteByte(' ')
	}
	b.WriteString("at ")
	b.WriteString(now.Format(TimestampLayout))
	return b.String()
}

// Write replaces the file at path with body, creating parent directories.
func Write(path, body string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
