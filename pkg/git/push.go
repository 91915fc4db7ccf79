package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sgaunet/auto-release/internal/security"
)

// TimeoutError indicates a network operation was cancelled or timed out.
type TimeoutError struct {
	Operation string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("git %s timed out: %v", e.Operation, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func (r *Repository) push(ctx context.Context, operation, refSpec string) error {
	if r.rt.Flags.DryRun {
		r.log.Infof("dry-run: git %s %s '%s'", operation, r.remote, refSpec)
		return nil
	}

	remoteURL, err := r.RemoteURL(r.remote)
	if err != nil {
		return err
	}
	auth, err := r.authFor(remoteURL)
	if err != nil {
		return err
	}

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(refSpec)},
		Auth:       auth,
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case ctx.Err() != nil:
		return &TimeoutError{Operation: operation, Err: ctx.Err()}
	default:
		return security.SanitizeError(fmt.Errorf("git %s failed: %w", operation, err))
	}
}

// signature builds the author/tagger identity from git configuration,
// falling back to the GIT_AUTHOR_* environment variables.
func (r *Repository) signature() (*object.Signature, error) {
	name := r.rt.Getenv("GIT_AUTHOR_NAME")
	email := r.rt.Getenv("GIT_AUTHOR_EMAIL")

	if cfg, err := r.repo.ConfigScoped(gitconfig.GlobalScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}

	if name == "" || email == "" {
		return nil, errMissingIdentity
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}, nil
}
