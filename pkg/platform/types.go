// Package platform resolves the hosting provider of a repository once per
// run and creates the release on it.
//
// Use [Resolve] to build the provider [Info] from the repository URL, then
// [NewReleaser] to get the provider's [Releaser]:
//
//	info, err := platform.Resolve(ctx, platform.ResolveParams{...})
//	releaser, err := platform.NewReleaser(info, platform.Deps{...})
//	err = releaser.CreateRelease(ctx, platform.Request{...})
package platform

import (
	"github.com/sgaunet/auto-release/internal/security"
)

// Kind names a hosting provider.
type Kind string

// Supported providers.
const (
	KindGitHub Kind = "GitHub"
	KindGitLab Kind = "GitLab"
)

// Info is the resolved provider information. It is either a GitHubInfo or a
// GitLabInfo and is immutable after resolution.
type Info interface {
	Kind() Kind
	CI() bool
	info()
}

// GitHubInfo describes a repository hosted on github.com.
type GitHubInfo struct {
	// RepoWebURL is the repository page, without the .git suffix.
	RepoWebURL string
	// APIURL is the REST API root.
	APIURL string
	// APIBase is the repository API endpoint, APIURL + repos/<owner>/<repo>.
	APIBase string
	Owner   string
	Repo    string
	// Token is the bearer credential, only set from GITHUB_TOKEN.
	Token security.SecureToken
	IsCI  bool
}

// Kind implements Info.
func (GitHubInfo) Kind() Kind { return KindGitHub }

// CI implements Info.
func (i GitHubInfo) CI() bool { return i.IsCI }

func (GitHubInfo) info() {}

// GitLabInfo describes a repository hosted on a GitLab instance.
type GitLabInfo struct {
	// BaseURL is the instance root, e.g. https://gitlab.com.
	BaseURL   string
	ProjectID string
	// APIBase is the project API endpoint, BaseURL/api/v4/projects/<id>.
	APIBase string
	// AuthHeaderName is PRIVATE-TOKEN or JOB-TOKEN.
	AuthHeaderName string
	Token          security.SecureToken
	IsCI           bool
}

// Kind implements Info.
func (GitLabInfo) Kind() Kind { return KindGitLab }

// CI implements Info.
func (i GitLabInfo) CI() bool { return i.IsCI }

func (GitLabInfo) info() {}

// Request is the release to create.
type Request struct {
	Tag        string
	Title      string
	Body       string
	Prerelease bool
	// Ref is the commit the tag points to.
	Ref string
	// Draft defaults to true when nil. Only GitHub API releases use it.
	Draft *bool
}

// IsDraft resolves the Draft default.
func (r Request) IsDraft() bool {
	return r.Draft == nil || *r.Draft
}
