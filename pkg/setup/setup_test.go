package setup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sgaunet/auto-release/internal/ui"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/git"
	"github.com/sgaunet/auto-release/pkg/manifest"
	"github.com/sgaunet/auto-release/pkg/setup"
	"github.com/sgaunet/auto-release/testing/fixtures"
	"github.com/sgaunet/auto-release/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeRemotes struct {
	remotes []git.Remote
	err     error
}

func (f fakeRemotes) Remotes() ([]git.Remote, error) {
	return f.remotes, f.err
}

func loadScripts(t *testing.T, dir string) (*manifest.Document, map[string]string) {
	t.Helper()
	doc, err := manifest.LoadDocument(dir)
	require.NoError(t, err)
	var scripts map[string]string
	_, err = doc.Get("scripts", &scripts)
	require.NoError(t, err)
	return doc, scripts
}

func TestPrepublishOnly(t *testing.T) {
	tests := []struct {
		existing string
		want     string
	}{
		{"", "auto-release prepublishOnly"},
		{"yarn build", "yarn build && auto-release prepublishOnly"},
		{"yarn build && auto-release prepublishOnly", "yarn build && auto-release prepublishOnly"},
		{"auto-release prepublishOnly", "auto-release prepublishOnly"},
	}
	for _, tt := range tests {
		t.Run(tt.existing, func(t *testing.T) {
			assert.Equal(t, tt.want, setup.PrepublishOnly(tt.existing))
		})
	}
}

func TestPublishCommand(t *testing.T) {
	assert.Equal(t, "auto-release publish", setup.PublishCommand(setup.Answers{}))
	assert.Equal(t, "auto-release publish ~/.gitlab-token", setup.PublishCommand(setup.Answers{TokenFile: "~/.gitlab-token"}))
	assert.Equal(t, "auto-release publish --ci --no-draft", setup.PublishCommand(setup.Answers{CI: true, NoDraft: true}))
}

func TestSecretsURL(t *testing.T) {
	want := "https://github.com/acme/widget/settings/secrets/actions/new"
	assert.Equal(t, want, setup.SecretsURL("https://github.com/acme/widget.git"))
	assert.Equal(t, want, setup.SecretsURL("git+https://github.com/acme/widget.git"))
	assert.Equal(t, want, setup.SecretsURL("git@github.com:acme/widget.git"))
}

func TestRenderWorkflow(t *testing.T) {
	data, err := setup.RenderWorkflow("trunk")
	require.NoError(t, err)

	var decoded struct {
		Name string `yaml:"name"`
		On   struct {
			Push struct {
				Branches []string `yaml:"branches"`
			} `yaml:"push"`
		} `yaml:"on"`
		Jobs map[string]struct {
			RunsOn string           `yaml:"runs-on"`
			Steps  []map[string]any `yaml:"steps"`
		} `yaml:"jobs"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, "release", decoded.Name)
	assert.Equal(t, []string{"trunk"}, decoded.On.Push.Branches)
	require.Contains(t, decoded.Jobs, "release")
	job := decoded.Jobs["release"]
	assert.Equal(t, "ubuntu-latest", job.RunsOn)
	require.Len(t, job.Steps, 4)
	assert.Equal(t, "yarn publish:npm", job.Steps[3]["run"])
	assert.Equal(t, map[string]any{
		"GITHUB_TOKEN":    "${{ secrets.GITHUB_TOKEN }}",
		"NODE_AUTH_TOKEN": "${{ secrets.NPM_TOKEN }}",
	}, job.Steps[3]["env"])
}

func TestDetectRemote(t *testing.T) {
	rt := config.NewRuntime(nil, t.TempDir(), config.Flags{})

	w := setup.New(rt, setup.Deps{})
	assert.Empty(t, w.DetectRemote())

	w = setup.New(rt, setup.Deps{Remotes: fakeRemotes{remotes: []git.Remote{
		{Name: "origin", URL: "git@github.com:acme/widget.git"},
		{Name: "upstream", URL: "https://github.com/other/widget.git"},
	}}})
	assert.Equal(t, "https://github.com/acme/widget.git", w.DetectRemote())

	w = setup.New(rt, setup.Deps{Remotes: fakeRemotes{err: errors.New("boom")}})
	assert.Empty(t, w.DetectRemote())
}

func TestRun_GitHubCI(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteManifest(t, dir, fixtures.PublicManifest)

	prompter := mocks.NewPrompter()
	prompter.InputAnswers = []string{""}
	// CI, edit changelog, setup token, generate token, open browser
	prompter.ConfirmAnswers = []bool{true, false, true, true, true}
	exec := mocks.NewExecutor()

	w := setup.New(config.NewRuntime(nil, dir, config.Flags{}), setup.Deps{
		Remotes:  fakeRemotes{remotes: []git.Remote{{Name: "origin", URL: "git@github.com:acme/widget.git"}}},
		Prompter: prompter,
		Exec:     exec,
		Branch:   "trunk",
	})
	require.NoError(t, w.Run(context.Background()))

	doc, scripts := loadScripts(t, dir)
	assert.Equal(t, []string{"name", "version", "private", "repository", "scripts"}, doc.Keys())

	var repo manifest.Repository
	_, err := doc.Get("repository", &repo)
	require.NoError(t, err)
	assert.Equal(t, manifest.Repository{Type: "git", URL: "https://github.com/acme/widget.git"}, repo)

	assert.Equal(t, map[string]string{
		"test":           "jest",
		"prepublishOnly": "auto-release prepublishOnly",
		"publish:npm":    "auto-release publish --ci --no-draft",
	}, scripts)

	data, err := os.ReadFile(filepath.Join(dir, setup.WorkflowPath))
	require.NoError(t, err)
	assert.Contains(t, string(data), "trunk")

	assert.Equal(t, []string{
		"npm 'token' 'create'",
		"open 'https://github.com/acme/widget/settings/secrets/actions/new'",
	}, exec.Commands())
}

func TestRun_GitLabWithTokenFile(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteManifest(t, dir, fixtures.ManifestWithoutRepository)

	prompter := mocks.NewPrompter()
	prompter.InputAnswers = []string{"https://gitlab.example.com/acme/widget", ""}
	prompter.ConfirmAnswers = []bool{false}
	exec := mocks.NewExecutor()

	rt := config.NewRuntime([]string{"GITLAB_TOKEN_FILE=/secure/token"}, dir, config.Flags{})
	w := setup.New(rt, setup.Deps{Prompter: prompter, Exec: exec})
	require.NoError(t, w.Run(context.Background()))

	doc, scripts := loadScripts(t, dir)
	assert.Equal(t, []string{"name", "version", "repository", "scripts"}, doc.Keys())
	assert.Equal(t, "auto-release publish /secure/token", scripts["publish:npm"])
	assert.Equal(t, "/secure/token", prompter.GetLastCall("Input").Args["default"])

	assert.NoFileExists(t, filepath.Join(dir, setup.WorkflowPath))
	assert.Empty(t, exec.GetCalls())
	assert.Equal(t, 1, prompter.GetCallCount("Confirm"))
}

func TestRun_TokenCreationRetry(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteManifest(t, dir, fixtures.PublicManifest)

	prompter := mocks.NewPrompter()
	prompter.InputAnswers = []string{"https://github.com/acme/widget"}
	// CI, edit changelog, setup token, generate (fails), give up, no browser
	prompter.ConfirmAnswers = []bool{true, true, true, true, false, false}
	exec := mocks.NewExecutor()
	exec.RunErrors["npm 'token' 'create'"] = errors.New("exit status 1")

	w := setup.New(config.NewRuntime(nil, dir, config.Flags{}), setup.Deps{Prompter: prompter, Exec: exec})
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, []string{"npm 'token' 'create'"}, exec.Commands())
	_, scripts := loadScripts(t, dir)
	assert.Equal(t, "auto-release publish --ci", scripts["publish:npm"])
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteManifest(t, dir, fixtures.PublicManifest)

	prompter := mocks.NewPrompter()
	prompter.InputError = ui.ErrCancelled

	w := setup.New(config.NewRuntime(nil, dir, config.Flags{}), setup.Deps{Prompter: prompter, Exec: mocks.NewExecutor()})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, failure.IsExpected(err))
	assert.Equal(t, "setup aborted", err.Error())

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, fixtures.PublicManifest, string(data))
}

func TestRun_InvalidRepositoryURL(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteManifest(t, dir, fixtures.PublicManifest)

	prompter := mocks.NewPrompter()
	prompter.InputAnswers = []string{"not a url at all"}

	w := setup.New(config.NewRuntime(nil, dir, config.Flags{}), setup.Deps{Prompter: prompter, Exec: mocks.NewExecutor()})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, failure.IsExpected(err))
}
