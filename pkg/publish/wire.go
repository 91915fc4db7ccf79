package publish

import (
	"context"

	"github.com/sgaunet/auto-release/internal/ui"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/git"
	"github.com/sgaunet/auto-release/pkg/platform"
	"github.com/sgaunet/auto-release/pkg/registry"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
)

// NewDefault wires a Publisher to the git repository of the working
// directory, the npm CLI, the terminal and the real provider APIs.
func NewDefault(rt config.Runtime, cfg *config.Config, logger *bullets.Logger) (*Publisher, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	repo, err := git.OpenRepository(rt.Workdir)
	if err != nil {
		return nil, failure.Wrap("Not a git repository", err)
	}
	repo.SetLogger(logger)
	repo.SetRuntime(rt)

	exec := runner.New(rt, logger)

	deps := Deps{
		Repo:     repo,
		Registry: registry.NewNPM(exec, cfg.Registry.NPM, logger),
		Exec:     exec,
		Prompter: ui.NewPrompter(),
		ResolveInfo: func(ctx context.Context, repositoryURL string) (platform.Info, error) {
			return platform.Resolve(ctx, platform.ResolveParams{
				RepositoryURL: repositoryURL,
				Runtime:       rt,
				Config:        cfg,
				Log:           logger,
			})
		},
		NewReleaser: func(info platform.Info) (platform.Releaser, error) {
			return platform.NewReleaser(info, platform.Deps{
				Exec:    exec,
				DryRun:  rt.Flags.DryRun,
				Verbose: rt.Flags.Verbose,
				Log:     logger,
			})
		},
		Log: logger,
	}
	return New(rt, cfg, deps), nil
}
