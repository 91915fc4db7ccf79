package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/auto-release/internal/urlutil"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	ghclient "github.com/sgaunet/auto-release/pkg/github"
	"github.com/sgaunet/auto-release/pkg/gitlab"
	"github.com/sgaunet/bullets"
)

const githubHost = "github.com"

// ResolveParams are the inputs of Resolve.
type ResolveParams struct {
	RepositoryURL string
	Runtime       config.Runtime
	Config        *config.Config
	Log           *bullets.Logger
	// Transport overrides the HTTP transport of the GitLab project lookup.
	Transport http.RoundTripper
}

// Resolve infers the provider from the repository URL hostname and gathers
// its credentials and endpoints.
func Resolve(ctx context.Context, p ResolveParams) (Info, error) { //nolint:ireturn // closed variant
	u, err := urlutil.NormalizeRepositoryURL(p.RepositoryURL)
	if err != nil {
		return nil, failure.Wrap("Invalid repository url: "+p.RepositoryURL, err)
	}
	if p.Config == nil {
		p.Config = config.Default()
	}

	if u.Hostname() == githubHost {
		return resolveGitHub(p, urlutil.WebURL(u), urlutil.ProjectPath(u))
	}
	return resolveGitLab(ctx, p, u.Scheme+"://"+u.Host, urlutil.ProjectPath(u))
}

func resolveGitHub(p ResolveParams, webURL, projectPath string) (Info, error) {
	owner, repo, err := ghclient.SplitOwnerRepo(projectPath)
	if err != nil {
		return nil, failure.Wrap("Invalid GitHub repository url: "+webURL, err)
	}

	apiURL := p.Config.GitHub.APIURL
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	info := GitHubInfo{
		RepoWebURL: webURL,
		APIURL:     apiURL,
		APIBase:    apiURL + "repos/" + owner + "/" + repo,
		Owner:      owner,
		Repo:       repo,
		Token:      security.NewSecureToken(p.Runtime.Getenv("GITHUB_TOKEN"), "GITHUB_TOKEN"),
		IsCI:       p.Runtime.Flags.CI,
	}
	if info.IsCI && info.Token.IsEmpty() {
		return nil, failure.Expected("Missing GITHUB_TOKEN: GitHub releases in CI mode need a token")
	}
	return info, nil
}

func resolveGitLab(ctx context.Context, p ResolveParams, baseURL, projectPath string) (Info, error) {
	token, header, err := gitlabToken(p)
	if err != nil {
		return nil, err
	}
	security.DebugAuth(p.Log, "GitLab API", token, map[string]string{"header": header})

	info := GitLabInfo{
		BaseURL:        baseURL,
		AuthHeaderName: header,
		Token:          token,
		IsCI:           p.Runtime.Flags.CI,
	}

	if info.IsCI {
		info.ProjectID = p.Runtime.Getenv("CI_PROJECT_ID")
		if info.ProjectID == "" {
			return nil, failure.Expected("CI_PROJECT_ID is not set")
		}
	} else {
		client, err := gitlab.NewClient(gitlab.Options{
			BaseURL:    baseURL,
			Token:      token,
			HeaderName: header,
			Transport:  p.Transport,
		})
		if err != nil {
			return nil, err
		}
		client.SetLogger(p.Log)

		info.ProjectID, err = client.ProjectID(ctx, projectPath)
		if errors.Is(err, gitlab.ErrProjectNotFound) {
			return nil, failure.Expected("Project not found")
		}
		if err != nil {
			return nil, err
		}
	}

	info.APIBase = baseURL + "/api/v4/projects/" + info.ProjectID
	return info, nil
}

// gitlabToken picks the CI job token, then the token file, then
// GITLAB_TOKEN.
func gitlabToken(p ResolveParams) (security.SecureToken, string, error) {
	if job := p.Runtime.Getenv("CI_JOB_TOKEN"); job != "" {
		return security.NewSecureToken(job, "CI_JOB_TOKEN"), gitlab.JobTokenHeader, nil
	}

	tokenFile := p.Runtime.Flags.TokenFile
	if tokenFile == "" {
		tokenFile = p.Config.GitLab.TokenFile
	}
	if tokenFile != "" {
		path := expandHome(tokenFile, p.Runtime.Getenv("HOME"))
		// #nosec G304 - the token file is chosen by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return security.SecureToken{}, "", failure.Wrap("Cannot read Release API token (reading from "+tokenFile+")", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return security.SecureToken{}, "", failure.Expected("Cannot read Release API token (reading from " + tokenFile + ")")
		}
		return security.NewSecureToken(token, "token file"), gitlab.PrivateTokenHeader, nil
	}

	if env := p.Runtime.Getenv("GITLAB_TOKEN"); env != "" {
		return security.NewSecureToken(env, "GITLAB_TOKEN"), gitlab.PrivateTokenHeader, nil
	}

	return security.SecureToken{}, "", failure.Expected("You must specify token file as first argument for gitlab repos.")
}

func expandHome(path, home string) string {
	if home == "" || (path != "~" && !strings.HasPrefix(path, "~/")) {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Describe renders info for narration.
func Describe(info Info) string {
	switch i := info.(type) {
	case GitHubInfo:
		return fmt.Sprintf("GitHub repository %s/%s", i.Owner, i.Repo)
	case GitLabInfo:
		return fmt.Sprintf("GitLab project %s on %s", i.ProjectID, i.BaseURL)
	default:
		return "unknown provider"
	}
}
