package setup

import (
	"github.com/sgaunet/auto-release/internal/ui"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/git"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
)

// NewDefault wires a Wizard to the terminal, the git repository of the
// working directory when there is one, and the npm CLI.
func NewDefault(rt config.Runtime, logger *bullets.Logger) *Wizard {
	deps := Deps{
		Prompter: ui.NewPrompter(),
		Exec:     runner.New(rt, logger).WithEnv(rt.EnvironWithout("npm_")),
		Log:      logger,
	}

	repo, err := git.OpenRepository(rt.Workdir)
	if err != nil {
		logger.Debug("No git repository: " + err.Error())
		return New(rt, deps)
	}
	deps.Remotes = repo
	if branch, err := repo.CurrentBranch(); err == nil {
		deps.Branch = branch
	}
	return New(rt, deps)
}
