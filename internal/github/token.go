package github

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// TokenSource supplies a GitHub API token.
type TokenSource interface {
	Name() string
	Token() (string, error)
}

// CLITokenSource asks the gh CLI for the token it is logged in with.
type CLITokenSource struct {
	cli interface{ AuthToken() (string, error) }
}

func NewCLITokenSource(cli *GitHubCli) CLITokenSource {
	return CLITokenSource{cli: cli}
}

func (s CLITokenSource) Name() string { return "gh auth token" }

func (s CLITokenSource) Token() (string, error) {
	return s.cli.AuthToken()
}

// EnvTokenSource reads the first non-empty variable of Names.
type EnvTokenSource struct {
	Names []string
}

func (s EnvTokenSource) Name() string { return "environment" }

func (s EnvTokenSource) Token() (string, error) {
	for _, name := range s.Names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("none of %v are set", s.Names)
}

// PromptTokenSource asks the user to type a token.
type PromptTokenSource struct {
	In  io.Reader
	Out io.Writer
}

func (s PromptTokenSource) Name() string { return "prompt" }

func (s PromptTokenSource) Token() (string, error) {
	if _, err := fmt.Fprint(s.Out, "Please enter your GitHub token: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("no token entered")
	}
	return token, nil
}

// ResolveToken returns the token from the first source that yields one.
// It returns ErrNoToken when every source fails.
func ResolveToken(log *clog.Logger, sources ...TokenSource) (string, error) {
	for _, source := range sources {
		token, err := source.Token()
		if err == nil && token != "" {
			log.Debug("Resolved GitHub token", "source", source.Name())
			return token, nil
		}
		log.Debug("Token source unavailable", "source", source.Name(), "error", err)
	}
	return "", ErrNoToken
}
