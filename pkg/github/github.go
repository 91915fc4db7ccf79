// Package github creates releases through the GitHub REST API and builds
// the pre-filled "new release" form URL used outside CI.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"
	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/bullets"
	"golang.org/x/oauth2"
)

var (
	errTokenRequired    = errors.New("GITHUB_TOKEN environment variable is required")
	errInvalidURLFormat = errors.New("invalid GitHub repository path")

	// ErrTokenRequired is returned when no GitHub token is available.
	ErrTokenRequired = errTokenRequired
	// ErrInvalidURLFormat is returned when a repository path is not owner/repo.
	ErrInvalidURLFormat = errInvalidURLFormat
)

// Client represents a GitHub API client wrapper.
type Client struct {
	client *github.Client
	log    *bullets.Logger
}

// ReleaseParams describes a release to create.
type ReleaseParams struct {
	TagName         string
	Name            string
	Body            string
	TargetCommitish string
	Draft           bool
	Prerelease      bool
}

// NewClient creates a GitHub client authenticated with token. An empty
// apiURL selects the public API.
func NewClient(ctx context.Context, token security.SecureToken, apiURL string) (*Client, error) {
	if token.IsEmpty() {
		return nil, errTokenRequired
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = base
	}

	return &Client{client: client, log: bullets.New(io.Discard)}, nil
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger *bullets.Logger) {
	c.log = logger
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.client.BaseURL.String()
}

// NewRepositoryRelease converts params to the API request body.
func NewRepositoryRelease(p ReleaseParams) *github.RepositoryRelease {
	release := &github.RepositoryRelease{
		TagName:    github.Ptr(p.TagName),
		Name:       github.Ptr(p.Name),
		Body:       github.Ptr(p.Body),
		Draft:      github.Ptr(p.Draft),
		Prerelease: github.Ptr(p.Prerelease),
	}
	if p.TargetCommitish != "" {
		release.TargetCommitish = github.Ptr(p.TargetCommitish)
	}
	return release
}

// CreateRelease creates a release in owner/repo.
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, p ReleaseParams) (*github.RepositoryRelease, error) {
	c.log.Debug(fmt.Sprintf("Creating GitHub release %s in %s/%s", p.TagName, owner, repo))

	release, _, err := c.client.Repositories.CreateRelease(ctx, owner, repo, NewRepositoryRelease(p))
	if err != nil {
		return nil, security.SanitizeError(fmt.Errorf("failed to create release: %w", err))
	}

	c.log.Debug("GitHub release created: " + release.GetHTMLURL())
	return release, nil
}

// SplitOwnerRepo splits an "owner/repo" project path.
func SplitOwnerRepo(path string) (string, string, error) {
	owner, repo, ok := strings.Cut(strings.Trim(path, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("%w: %q", errInvalidURLFormat, path)
	}
	return owner, repo, nil
}

// ReleaseFormURL returns the repository's "new release" page pre-filled with
// params.
func ReleaseFormURL(repoWebURL string, p ReleaseParams) string {
	q := url.Values{}
	q.Set("tag", p.TagName)
	q.Set("title", p.Name)
	q.Set("body", p.Body)
	q.Set("prerelease", fmt.Sprintf("%t", p.Prerelease))
	if p.TargetCommitish != "" {
		q.Set("target", p.TargetCommitish)
	}
	return strings.TrimSuffix(repoWebURL, "/") + "/releases/new?" + q.Encode()
}
