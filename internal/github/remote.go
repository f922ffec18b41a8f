package github

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultHost = "github.com"

// Repository identifies a repository on a GitHub host.
type Repository struct {
	Host  string
	Name  string
	Owner string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsEnterprise reports whether the repository lives on a GitHub Enterprise host.
func (r Repository) IsEnterprise() bool {
	return r.Host != "" && !strings.EqualFold(r.Host, defaultHost)
}

// ParseRemoteURL extracts host, owner and repository name from a git remote URL.
// Supported forms:
//
//	git@github.com:owner/repo.git
//	ssh://git@github.com[:port]/owner/repo.git
//	https://github.com/owner/repo.git
//	http://github.example.com/owner/repo
//
// The ".git" suffix is optional.
func ParseRemoteURL(remote string) (Repository, error) {
	trimmed := strings.TrimSpace(remote)

	switch {
	case strings.HasPrefix(trimmed, "ssh://"),
		strings.HasPrefix(trimmed, "https://"),
		strings.HasPrefix(trimmed, "http://"):
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRemoteURL, remote)
		}
		host := u.Host
		if u.Scheme == "ssh" {
			// the ssh port says nothing about where the API lives
			host = u.Hostname()
		}
		return repositoryFromPath(remote, host, u.Path)

	case strings.Contains(trimmed, "@") && strings.Contains(trimmed, ":"):
		// scp-like syntax: user@host:owner/repo
		userHost, path, _ := strings.Cut(trimmed, ":")
		_, host, _ := strings.Cut(userHost, "@")
		if host == "" {
			return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRemoteURL, remote)
		}
		return repositoryFromPath(remote, host, path)
	}

	return Repository{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidRemoteURL, remote)
}

func repositoryFromPath(remote, host, path string) (Repository, error) {
	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return Repository{}, fmt.Errorf("%w: expected owner/repo in %q", ErrInvalidRemoteURL, remote)
	}

	return Repository{
		Host:  host,
		Name:  segments[1],
		Owner: segments[0],
	}, nil
}
