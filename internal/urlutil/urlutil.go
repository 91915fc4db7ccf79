// Package urlutil normalizes the repository URLs found in package manifests
// and git remotes.
//
// It handles the formats a manifest's repository field may take:
//   - HTTPS: https://github.com/owner/repo.git
//   - npm style: git+https://github.com/owner/repo.git
//   - SSH colon: git@github.com:owner/repo.git
//   - SSH protocol: ssh://git@github.com/owner/repo.git
//   - shorthand: github:owner/repo, gitlab:group/project, owner/repo
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errInvalidRepositoryURL = errors.New("invalid repository URL")

// ErrInvalidRepositoryURL is returned when a repository URL cannot be normalized.
var ErrInvalidRepositoryURL = errInvalidRepositoryURL

var shorthandHosts = map[string]string{
	"github":    "github.com",
	"gitlab":    "gitlab.com",
	"bitbucket": "bitbucket.org",
}

// TrimGitSuffix removes a trailing ".git".
func TrimGitSuffix(s string) string {
	return strings.TrimSuffix(s, ".git")
}

// HTTPRemote converts a git remote to its https form.
//
//	git@gitlab.com:group/project.git → https://gitlab.com/group/project.git
//	ssh://git@github.com/owner/repo  → https://github.com/owner/repo
func HTTPRemote(remote string) string {
	if strings.HasPrefix(remote, "https://") || strings.HasPrefix(remote, "http://") {
		return remote
	}

	rest := strings.TrimPrefix(remote, "ssh://")
	if at := strings.Index(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	if !strings.HasPrefix(remote, "ssh://") {
		rest = strings.Replace(rest, ":", "/", 1)
	}
	return "https://" + rest
}

// NormalizeRepositoryURL returns the https URL of a manifest repository field.
func NormalizeRepositoryURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", errInvalidRepositoryURL)
	}
	s = strings.TrimPrefix(s, "git+")

	switch {
	case strings.HasPrefix(s, "git://"):
		s = "https://" + strings.TrimPrefix(s, "git://")
	case strings.Contains(s, "://"):
		s = HTTPRemote(s)
	case strings.HasPrefix(s, "git@"):
		s = HTTPRemote(s)
	default:
		s = expandShorthand(s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidRepositoryURL, err)
	}
	if u.Hostname() == "" || ProjectPath(u) == "" {
		return nil, fmt.Errorf("%w: %s", errInvalidRepositoryURL, raw)
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func expandShorthand(s string) string {
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if host, known := shorthandHosts[prefix]; known {
			return "https://" + host + "/" + rest
		}
	}
	// npm treats a bare "owner/repo" as a GitHub repository.
	if strings.Count(s, "/") == 1 && !strings.Contains(s, ":") {
		return "https://github.com/" + s
	}
	return s
}

// ProjectPath returns the repository path of u without slashes or ".git",
// e.g. "group/subgroup/project".
func ProjectPath(u *url.URL) string {
	return TrimGitSuffix(strings.Trim(u.Path, "/"))
}

// WebURL returns the browser URL of the repository: scheme, host and path
// without ".git".
func WebURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/" + ProjectPath(u)
}
