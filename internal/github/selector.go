package github

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/autopr/internal/config"
)

// Selector picks the Provider for a run.
type Selector struct {
	DryRun   bool
	In       io.Reader // token prompt input
	Out      io.Writer // token prompt output
	Strategy config.Strategy
	Timeout  time.Duration
	TokenEnv []string
	// RemoteURL is only consulted when the API strategy is chosen.
	RemoteURL  func() (string, error)
	WorkingDir string

	log      *clog.Logger
	lookPath func(file string) (string, error)
	newCli   func() *GitHubCli
}

// NewSelector creates a Selector for the configured strategy.
func NewSelector(prCfg config.PRConfig, workingDir string, timeout time.Duration, dryRun bool, remoteURL func() (string, error), in io.Reader, out io.Writer) *Selector {
	s := &Selector{
		DryRun:     dryRun,
		In:         in,
		Out:        out,
		RemoteURL:  remoteURL,
		Strategy:   prCfg.Strategy,
		Timeout:    timeout,
		TokenEnv:   prCfg.TokenEnv,
		WorkingDir: workingDir,
		log:        clog.Default().WithPrefix("github"),
		lookPath:   exec.LookPath,
	}
	s.newCli = func() *GitHubCli {
		return NewCli(s.DryRun, s.WorkingDir, s.Timeout)
	}
	return s
}

// Select returns the gh CLI provider when the strategy allows it and gh is
// installed, and the REST API provider otherwise.
func (s *Selector) Select() (Provider, error) {
	_, lookErr := s.lookPath("gh")
	ghInstalled := lookErr == nil

	switch s.Strategy {
	case config.StrategyCLI:
		if !ghInstalled {
			return nil, fmt.Errorf("strategy %q requires the gh CLI: %w", s.Strategy, lookErr)
		}
		return s.newCli(), nil
	case config.StrategyAuto, "":
		if ghInstalled {
			s.log.Debug("Using GitHub CLI")
			return s.newCli(), nil
		}
		s.log.Info("GitHub CLI not found, using the REST API")
	case config.StrategyAPI:
	default:
		return nil, fmt.Errorf("unknown strategy %q", s.Strategy)
	}

	return s.newAPI(ghInstalled)
}

func (s *Selector) newAPI(ghInstalled bool) (*GitHubAPI, error) {
	remoteURL, err := s.RemoteURL()
	if err != nil {
		return nil, err
	}
	repo, err := ParseRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}

	var sources []TokenSource
	if ghInstalled {
		sources = append(sources, NewCLITokenSource(s.newCli()))
	}
	sources = append(sources, EnvTokenSource{Names: s.TokenEnv})
	if s.In != nil && !s.DryRun {
		sources = append(sources, PromptTokenSource{In: s.In, Out: s.Out})
	}

	token, err := ResolveToken(s.log, sources...)
	if err != nil {
		if !s.DryRun {
			return nil, fmt.Errorf("cannot authenticate to %s: %w", repo.Host, err)
		}
		s.log.Warn("No GitHub token found, dry run continues unauthenticated", "host", repo.Host)
	}
	return NewAPI(token, repo, s.DryRun, s.Timeout)
}
