// Package setup implements the interactive wizard preparing a package for
// auto-release: repository field, publish scripts, CI workflow and npm
// token.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sgaunet/auto-release/internal/ui"
	"github.com/sgaunet/auto-release/internal/urlutil"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/git"
	"github.com/sgaunet/auto-release/pkg/manifest"
	"github.com/sgaunet/auto-release/pkg/platform"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
)

const (
	// GuardCommand is the prepublishOnly hook refusing unmanaged publishes.
	GuardCommand = "auto-release prepublishOnly"
	// PublishScript is the manifest script running the release.
	PublishScript = "publish:npm"

	defaultBranch    = "main"
	defaultTokenFile = "~/.gitlab-token"
	githubHost       = "github.com"
)

var errNoRemote = errors.New("no repository url given")

// RemoteLister lists the git remotes of the working directory.
type RemoteLister interface {
	Remotes() ([]git.Remote, error)
}

// Deps are the collaborators of the wizard.
type Deps struct {
	// Remotes may be nil outside a git repository.
	Remotes  RemoteLister
	Prompter ui.Prompter
	// Exec runs npm and the browser with the npm_* variables stripped.
	Exec runner.Executor
	// Branch is the branch the CI workflow publishes from.
	Branch string
	Log    *bullets.Logger
}

// Answers are the choices collected by the wizard.
type Answers struct {
	RepositoryURL string
	CI            bool
	GitHub        bool
	TokenFile     string
	NoDraft       bool
}

// Wizard prepares a package for auto-release.
type Wizard struct {
	rt   config.Runtime
	deps Deps
	log  *bullets.Logger
}

// New creates a Wizard.
func New(rt config.Runtime, deps Deps) *Wizard {
	if deps.Log == nil {
		deps.Log = bullets.New(io.Discard)
	}
	if deps.Branch == "" {
		deps.Branch = defaultBranch
	}
	return &Wizard{rt: rt, deps: deps, log: deps.Log}
}

// Run asks the questions, applies the changes and optionally sets up the
// npm token of the CI workflow.
func (w *Wizard) Run(ctx context.Context) error {
	w.log.Info("Welcome to auto-release")
	w.log.Info("Detected answers are shown as defaults, press enter to accept them. Abort with Ctrl-C.")

	answers, err := w.Ask()
	if err != nil {
		return cancelled(err)
	}

	w.log.Info("Making required changes")
	if err := Apply(w.rt.Workdir, answers); err != nil {
		return failure.Wrap("Cannot update "+manifest.FileName, err)
	}
	if answers.GitHub && answers.CI {
		path, err := WriteWorkflow(w.rt.Workdir, w.deps.Branch)
		if err != nil {
			return err
		}
		w.log.Info("Wrote " + path)
	}
	w.log.Info("Changes done")

	if answers.GitHub && answers.CI {
		if err := w.setupNPMToken(ctx, answers.RepositoryURL); err != nil {
			return cancelled(err)
		}
	}

	w.log.Info("We are done")
	return nil
}

// Ask collects the answers.
func (w *Wizard) Ask() (Answers, error) {
	var a Answers

	remote, err := w.deps.Prompter.Input("Git repository https url", w.DetectRemote())
	if err != nil {
		return a, err
	}
	a.RepositoryURL = strings.TrimSpace(remote)
	if a.RepositoryURL == "" {
		return a, failure.Wrap("Repository url is required", errNoRemote)
	}
	u, err := urlutil.NormalizeRepositoryURL(a.RepositoryURL)
	if err != nil {
		return a, failure.Wrap("Invalid repository url: "+a.RepositoryURL, err)
	}
	a.GitHub = u.Hostname() == githubHost

	if a.CI, err = w.deps.Prompter.Confirm("Do you plan to publish using CI?", true); err != nil {
		return a, err
	}

	if !a.CI && !a.GitHub {
		def := w.rt.Getenv("GITLAB_TOKEN_FILE")
		if def == "" {
			def = defaultTokenFile
		}
		if a.TokenFile, err = w.deps.Prompter.Input("Where do you want to store gitlab token?", def); err != nil {
			return a, err
		}
	}

	if a.CI && a.GitHub {
		edit, err := w.deps.Prompter.Confirm("Do you want to edit automatically generated changelog after each release?", true)
		if err != nil {
			return a, err
		}
		a.NoDraft = !edit
	}
	return a, nil
}

// DetectRemote returns the https form of the origin remote, else of the
// first remote, else "".
func (w *Wizard) DetectRemote() string {
	if w.deps.Remotes == nil {
		return ""
	}
	remotes, err := w.deps.Remotes.Remotes()
	if err != nil {
		w.log.Debug("Cannot list remotes: " + err.Error())
		return ""
	}
	if len(remotes) == 0 {
		return ""
	}
	return urlutil.HTTPRemote(remotes[0].URL)
}

// Apply rewrites the manifest in dir: repository field, prepublishOnly guard
// and publish script. Key order is preserved.
func Apply(dir string, a Answers) error {
	doc, err := manifest.LoadDocument(dir)
	if err != nil {
		return err
	}

	if err := doc.Set("repository", manifest.Repository{Type: "git", URL: a.RepositoryURL}); err != nil {
		return err
	}

	var scripts map[string]string
	if _, err := doc.Get("scripts", &scripts); err != nil {
		return err
	}
	if err := doc.SetScript("prepublishOnly", PrepublishOnly(scripts["prepublishOnly"])); err != nil {
		return err
	}
	if err := doc.SetScript(PublishScript, PublishCommand(a)); err != nil {
		return err
	}
	return doc.Save(dir)
}

// PrepublishOnly appends the guard to an existing prepublishOnly script
// unless it already ends with it.
func PrepublishOnly(existing string) string {
	existing = strings.TrimSpace(existing)
	switch {
	case existing == "":
		return GuardCommand
	case strings.HasSuffix(existing, GuardCommand):
		return existing
	default:
		return existing + " && " + GuardCommand
	}
}

// PublishCommand returns the publish script for the answers.
func PublishCommand(a Answers) string {
	cmd := "auto-release publish"
	if a.TokenFile != "" {
		cmd += " " + a.TokenFile
	}
	if a.CI {
		cmd += " --ci"
	}
	if a.NoDraft {
		cmd += " --no-draft"
	}
	return cmd
}

// SecretsURL returns the page creating a new Actions secret of a GitHub
// repository.
func SecretsURL(repositoryURL string) string {
	u, err := urlutil.NormalizeRepositoryURL(repositoryURL)
	if err != nil {
		return urlutil.TrimGitSuffix(repositoryURL) + "/settings/secrets/actions/new"
	}
	return urlutil.WebURL(u) + "/settings/secrets/actions/new"
}

func (w *Wizard) setupNPMToken(ctx context.Context, repositoryURL string) error {
	ok, err := w.deps.Prompter.Confirm("Do you want to setup NPM_TOKEN?", true)
	if err != nil || !ok {
		return err
	}

	generated := false
	for {
		generated, err = w.deps.Prompter.Confirm("Do you want to generate npm token now?", true)
		if err != nil {
			return err
		}
		if !generated {
			break
		}
		w.log.Info("Running `npm token create`")
		if err := w.deps.Exec.Run(ctx, "npm", "token", "create"); err == nil {
			break
		}
		w.log.Warn("Seems like token creation failed.")
	}

	secret := "your secret"
	if generated {
		secret = "secret you just generated"
	}
	w.log.Info("Now you have to add the token to your repository secrets section")
	w.log.Info("Secret name: NPM_TOKEN")
	w.log.Info("Secret value: " + secret)

	open, err := w.deps.Prompter.Confirm("Open browser?", true)
	if err != nil || !open {
		return err
	}
	if err := platform.OpenBrowser(ctx, w.deps.Exec, SecretsURL(repositoryURL)); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func cancelled(err error) error {
	if errors.Is(err, ui.ErrCancelled) {
		return failure.Expected("setup aborted")
	}
	return err
}
