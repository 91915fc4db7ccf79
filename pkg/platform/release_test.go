package platform_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/gitlab"
	"github.com/sgaunet/auto-release/pkg/platform"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/auto-release/testing/mocks"
	"github.com/sgaunet/bullets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRef = "abc123def456789012345678901234567890abcd"

func testRequest() platform.Request {
	return platform.Request{
		Tag:        "v2.0.0-rc1",
		Title:      "Version 2.0.0-rc1",
		Body:       "- abc123d **feat:** add X",
		Prerelease: true,
		Ref:        testRef,
	}
}

func TestRequest_IsDraft(t *testing.T) {
	assert.True(t, platform.Request{}.IsDraft())

	draft := false
	assert.False(t, platform.Request{Draft: &draft}.IsDraft())
}

func TestGitHubFormReleaser(t *testing.T) {
	tests := []struct {
		name       string
		hasXdgOpen bool
		opener     string
	}{
		{"xdg-open", true, "xdg-open"},
		{"open fallback", false, "open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := mocks.NewExecutor()
			exec.CheckResults[runner.FormatCommand("which", "xdg-open")] = tt.hasXdgOpen

			releaser, err := platform.NewReleaser(platform.GitHubInfo{
				RepoWebURL: "https://github.com/acme/widget",
				Owner:      "acme",
				Repo:       "widget",
			}, platform.Deps{Exec: exec, Log: bullets.New(io.Discard)})
			require.NoError(t, err)

			require.NoError(t, releaser.CreateRelease(context.Background(), testRequest()))

			call := exec.GetLastCall("Run")
			require.NotNil(t, call)
			assert.Equal(t, tt.opener, call.Args["name"])

			args := call.Args["args"].([]string)
			require.Len(t, args, 1)
			formURL, err := url.Parse(args[0])
			require.NoError(t, err)
			assert.Equal(t, "/acme/widget/releases/new", formURL.Path)

			q := formURL.Query()
			assert.Equal(t, "v2.0.0-rc1", q.Get("tag"))
			assert.Equal(t, "Version 2.0.0-rc1", q.Get("title"))
			assert.Equal(t, "- abc123d **feat:** add X", q.Get("body"))
			assert.Equal(t, "true", q.Get("prerelease"))
			assert.Equal(t, testRef, q.Get("target"))
		})
	}
}

func TestGitHubAPIReleaser(t *testing.T) {
	var (
		gotBody map[string]any
		gotAuth string
		gotPath string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"tag_name":"v2.0.0-rc1","html_url":"https://github.com/acme/widget/releases/tag/v2.0.0-rc1"}`))
	}))
	defer server.Close()

	releaser, err := platform.NewReleaser(platform.GitHubInfo{
		APIURL:  server.URL + "/",
		APIBase: server.URL + "/repos/acme/widget",
		Owner:   "acme",
		Repo:    "widget",
		Token:   security.NewSecureToken("ghp_test123", "GITHUB_TOKEN"),
		IsCI:    true,
	}, platform.Deps{Exec: mocks.NewExecutor(), Log: bullets.New(io.Discard)})
	require.NoError(t, err)

	require.NoError(t, releaser.CreateRelease(context.Background(), testRequest()))

	assert.Equal(t, "/repos/acme/widget/releases", gotPath)
	assert.Equal(t, "Bearer ghp_test123", gotAuth)
	assert.Equal(t, "v2.0.0-rc1", gotBody["tag_name"])
	assert.Equal(t, "Version 2.0.0-rc1", gotBody["name"])
	assert.Equal(t, true, gotBody["draft"])
	assert.Equal(t, true, gotBody["prerelease"])
	assert.Equal(t, testRef, gotBody["target_commitish"])
}

func TestGitHubAPIReleaser_DryRun(t *testing.T) {
	var buf bytes.Buffer
	releaser, err := platform.NewReleaser(platform.GitHubInfo{
		APIURL:  "https://api.github.com/",
		APIBase: "https://api.github.com/repos/acme/widget",
		Token:   security.NewSecureToken("ghp_secretvalue", "GITHUB_TOKEN"),
		IsCI:    true,
	}, platform.Deps{Exec: mocks.NewExecutor(), DryRun: true, Log: bullets.New(&buf)})
	require.NoError(t, err)

	require.NoError(t, releaser.CreateRelease(context.Background(), testRequest()))

	out := buf.String()
	assert.Contains(t, out, "POST https://api.github.com/repos/acme/widget/releases")
	assert.Contains(t, out, "Authorization: Bearer $GITHUB_TOKEN")
	assert.Contains(t, out, `"tag_name": "v2.0.0-rc1"`)
	assert.NotContains(t, out, "ghp_secretvalue")
}

func TestGitHubAPIReleaser_MissingToken(t *testing.T) {
	releaser, err := platform.NewReleaser(platform.GitHubInfo{IsCI: true}, platform.Deps{Log: bullets.New(io.Discard)})
	require.NoError(t, err)

	err = releaser.CreateRelease(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, failure.IsExpected(err))
	assert.Equal(t, "Missing GITHUB_TOKEN", err.Error())
}

func TestGitLabReleaser(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v4/projects/42/releases", r.URL.Path)
		assert.Equal(t, "glpat-test", r.Header.Get(gitlab.PrivateTokenHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0-rc1"}`))
	}))
	defer server.Close()

	releaser, err := platform.NewReleaser(gitlabInfo(server.URL), platform.Deps{Log: bullets.New(io.Discard)})
	require.NoError(t, err)

	require.NoError(t, releaser.CreateRelease(context.Background(), testRequest()))
	assert.Equal(t, map[string]any{
		"tag_name":    "v2.0.0-rc1",
		"name":        "Version 2.0.0-rc1",
		"description": "- abc123d **feat:** add X",
		"ref":         testRef,
	}, gotBody)
}

func TestGitLabReleaser_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Release already exists"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	releaser, err := platform.NewReleaser(gitlabInfo(server.URL), platform.Deps{Verbose: true, Log: bullets.New(&buf)})
	require.NoError(t, err)

	err = releaser.CreateRelease(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, failure.IsExpected(err))
	assert.ErrorIs(t, err, gitlab.ErrReleaseNotCreated)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to create release"))
	assert.Contains(t, buf.String(), "Release already exists")
}

func TestGitLabReleaser_DryRun(t *testing.T) {
	var buf bytes.Buffer
	releaser, err := platform.NewReleaser(gitlabInfo("https://gitlab.invalid"), platform.Deps{DryRun: true, Log: bullets.New(&buf)})
	require.NoError(t, err)

	require.NoError(t, releaser.CreateRelease(context.Background(), testRequest()))
	assert.Contains(t, buf.String(), "POSTing release https://gitlab.invalid/api/v4/projects/42/releases")
	assert.Contains(t, buf.String(), "v2.0.0-rc1")
}

func TestOpenBrowser_FallsBackToOpen(t *testing.T) {
	exec := mocks.NewExecutor()
	require.NoError(t, platform.OpenBrowser(context.Background(), exec, "https://example.com"))
	assert.Equal(t, []string{"open 'https://example.com'"}, exec.Commands())
}

func gitlabInfo(baseURL string) platform.GitLabInfo {
	return platform.GitLabInfo{
		BaseURL:        baseURL,
		ProjectID:      "42",
		APIBase:        baseURL + "/api/v4/projects/42",
		AuthHeaderName: gitlab.PrivateTokenHeader,
		Token:          security.NewSecureToken("glpat-test", "test"),
	}
}
