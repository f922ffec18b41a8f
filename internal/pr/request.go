package pr

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmcampanini/autopr/internal/config"
)

// TimestampLayout renders the generation time in PR bodies.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Request describes a pull request to open. Every provider strategy
// receives the same Request so the resulting title and body are identical.
type Request struct {
	Base  string // branch the PR targets
	Body  string
	Head  string // feature branch
	Title string
}

// Ref identifies a created pull request.
type Ref struct {
	Number int
	URL    string
}

func (r Ref) String() string {
	if r.URL != "" {
		return fmt.Sprintf("#%d (%s)", r.Number, r.URL)
	}
	return fmt.Sprintf("#%d", r.Number)
}

// NewRequest builds the request for a run that changed file on head.
func NewRequest(prCfg config.PRConfig, head, base, file string, generatedAt time.Time) Request {
	return Request{
		Base:  base,
		Body:  Body(file, generatedAt),
		Head:  head,
		Title: prCfg.Title,
	}
}

// Body lists the changed file and the generation timestamp.
func Body(file string, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("This pull request contains automated changes to the dummy file.\n\n")
	b.WriteString("Changes made:\n")
	fmt.Fprintf(&b, "- Added random content to %s\n\n", file)
	fmt.Fprintf(&b, "Automatically generated at %s", generatedAt.Format(TimestampLayout))
	return b.String()
}
