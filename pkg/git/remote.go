package git

import (
	"errors"
	"fmt"
	"sort"
)

var errNoRemoteURL = errors.New("remote has no URL")

// Remote is a configured remote and its first URL.
type Remote struct {
	Name string
	URL  string
}

// RemoteURL returns the first URL of the named remote.
func (r *Repository) RemoteURL(remoteName string) (string, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", remoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: %s", errNoRemoteURL, remoteName)
	}

	return urls[0], nil
}

// Remotes lists the configured remotes, origin first then by name.
func (r *Repository) Remotes() ([]Remote, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	out := make([]Remote, 0, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		if len(cfg.URLs) == 0 {
			continue
		}
		out = append(out, Remote{Name: cfg.Name, URL: cfg.URLs[0]})
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Name == DefaultRemote) != (out[j].Name == DefaultRemote) {
			return out[i].Name == DefaultRemote
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
