package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/auto-release/pkg/failure"
	ghclient "github.com/sgaunet/auto-release/pkg/github"
	"github.com/sgaunet/auto-release/pkg/gitlab"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
)

var errUnknownProvider = errors.New("unknown provider")

// Releaser creates exactly one release. Failures are never retried.
type Releaser interface {
	CreateRelease(ctx context.Context, req Request) error
}

// Deps are the collaborators of the releasers.
type Deps struct {
	// Exec opens the browser for GitHub releases outside CI.
	Exec    runner.Executor
	DryRun  bool
	Verbose bool
	Log     *bullets.Logger
	// Transport overrides the HTTP transport of the GitLab client.
	Transport http.RoundTripper
}

// NewReleaser returns the releaser of the resolved provider.
func NewReleaser(info Info, deps Deps) (Releaser, error) { //nolint:ireturn // one implementation per provider
	switch i := info.(type) {
	case GitHubInfo:
		if i.IsCI {
			return &githubAPIReleaser{info: i, deps: deps}, nil
		}
		return &githubFormReleaser{info: i, deps: deps}, nil
	case GitLabInfo:
		return &gitlabReleaser{info: i, deps: deps}, nil
	default:
		return nil, fmt.Errorf("%w: %T", errUnknownProvider, info)
	}
}

func githubParams(req Request) ghclient.ReleaseParams {
	return ghclient.ReleaseParams{
		TagName:         req.Tag,
		Name:            req.Title,
		Body:            req.Body,
		TargetCommitish: req.Ref,
		Draft:           req.IsDraft(),
		Prerelease:      req.Prerelease,
	}
}

// githubFormReleaser hands the release over to the browser: the new release
// form is opened pre-filled and the user submits it.
type githubFormReleaser struct {
	info GitHubInfo
	deps Deps
}

func (r *githubFormReleaser) CreateRelease(ctx context.Context, req Request) error {
	formURL := ghclient.ReleaseFormURL(r.info.RepoWebURL, githubParams(req))
	r.deps.Log.Info("Opening release form: " + formURL)
	return OpenBrowser(ctx, r.deps.Exec, formURL)
}

// githubAPIReleaser creates the release with the REST API.
type githubAPIReleaser struct {
	info GitHubInfo
	deps Deps
}

func (r *githubAPIReleaser) CreateRelease(ctx context.Context, req Request) error {
	params := githubParams(req)
	endpoint := r.info.APIBase + "/releases"

	if r.deps.DryRun || r.deps.Verbose {
		body, err := json.MarshalIndent(ghclient.NewRepositoryRelease(params), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode release: %w", err)
		}
		r.deps.Log.Info(fmt.Sprintf("POST %s\nAuthorization: Bearer $GITHUB_TOKEN\n%s", endpoint, body))
	}
	if r.info.Token.IsEmpty() {
		return failure.Expected("Missing GITHUB_TOKEN")
	}
	if r.deps.DryRun {
		return nil
	}

	client, err := ghclient.NewClient(ctx, r.info.Token, r.info.APIURL)
	if err != nil {
		return err
	}
	client.SetLogger(r.deps.Log)

	release, err := client.CreateRelease(ctx, r.info.Owner, r.info.Repo, params)
	if err != nil {
		return err
	}
	r.deps.Log.Info("Release created: " + release.GetHTMLURL())
	return nil
}

// gitlabReleaser creates the release with the GitLab REST API.
type gitlabReleaser struct {
	info GitLabInfo
	deps Deps
}

func (r *gitlabReleaser) CreateRelease(ctx context.Context, req Request) error {
	params := gitlab.ReleaseParams{
		TagName:     req.Tag,
		Name:        req.Title,
		Description: req.Body,
		Ref:         req.Ref,
	}

	if r.deps.DryRun || r.deps.Verbose {
		body, err := gitlab.RequestBody(params)
		if err != nil {
			return err
		}
		r.deps.Log.Info(fmt.Sprintf("POSTing release %s/releases\n%s", r.info.APIBase, body))
	}
	if r.deps.DryRun {
		return nil
	}

	client, err := gitlab.NewClient(gitlab.Options{
		BaseURL:    r.info.BaseURL,
		Token:      r.info.Token,
		HeaderName: r.info.AuthHeaderName,
		Transport:  r.deps.Transport,
	})
	if err != nil {
		return err
	}
	client.SetLogger(r.deps.Log)

	if _, err := client.CreateRelease(ctx, r.info.ProjectID, params); err != nil {
		if r.deps.Verbose {
			r.deps.Log.Info("Response: " + security.SanitizeString(client.LastResponseBody()))
		}
		if errors.Is(err, gitlab.ErrReleaseNotCreated) {
			return failure.Wrap("Failed to create release", err)
		}
		return err
	}
	r.deps.Log.Info("Release created: " + req.Tag)
	return nil
}

// OpenBrowser opens url with xdg-open, or open where xdg-open is missing.
// In dry-run the executor only logs the command.
func OpenBrowser(ctx context.Context, exec runner.Executor, url string) error {
	if exec.Check(ctx, "which", "xdg-open") {
		return exec.Run(ctx, "xdg-open", url)
	}
	return exec.Run(ctx, "open", url)
}
