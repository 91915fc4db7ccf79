// Package git wraps go-git with the repository operations of a release:
// status, tags, history, commit, annotated tag and push.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/bullets"
)

// DefaultRemote is the remote commits and tags are pushed to.
const DefaultRemote = "origin"

var (
	errDetachedHead    = errors.New("HEAD is not pointing to a branch")
	errMissingIdentity = errors.New("git user.name and user.email must be configured to commit")
)

// Repository is a git working copy.
type Repository struct {
	repo   *git.Repository
	rt     config.Runtime
	log    *bullets.Logger
	remote string
}

// OpenRepository opens the repository containing path, searching parent
// directories for the .git directory.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{
		repo:   repo,
		log:    bullets.New(io.Discard),
		remote: DefaultRemote,
	}, nil
}

// SetLogger sets the logger for the repository.
func (r *Repository) SetLogger(logger *bullets.Logger) {
	r.log = logger
}

// SetRuntime sets the runtime the repository uses for dry-run and
// credentials lookups.
func (r *Repository) SetRuntime(rt config.Runtime) {
	r.rt = rt
}

// IsDirty reports whether the working tree has uncommitted changes,
// untracked files included.
func (r *Repository) IsDirty() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get repository status: %w", err)
	}

	return !status.IsClean(), nil
}

// HasTags reports whether the repository has at least one tag.
func (r *Repository) HasTags() (bool, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return false, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	found := false
	err = iter.ForEach(func(*plumbing.Reference) error {
		found = true
		return storer.ErrStop
	})
	if err != nil {
		return false, fmt.Errorf("failed to list tags: %w", err)
	}
	return found, nil
}

// TagExists reports whether a tag named name exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}

// DescribeNearestTag returns the tag closest to HEAD in commit distance,
// or "" when no tag is reachable.
func (r *Repository) DescribeNearestTag() (string, error) {
	tagged, err := r.taggedCommits()
	if err != nil {
		return "", err
	}
	if len(tagged) == 0 {
		return "", nil
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	visited := map[plumbing.Hash]bool{head.Hash(): true}
	queue := []plumbing.Hash{head.Hash()}
	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]

		if names, ok := tagged[hash]; ok {
			sort.Strings(names)
			return names[len(names)-1], nil
		}

		commit, err := r.repo.CommitObject(hash)
		if err != nil {
			return "", fmt.Errorf("failed to get commit object: %w", err)
		}
		for _, parent := range commit.ParentHashes {
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return "", nil
}

// taggedCommits maps commit hashes to the tags pointing at them, peeling
// annotated tags.
func (r *Repository) taggedCommits() (map[plumbing.Hash][]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	tagged := map[plumbing.Hash][]string{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash, err := r.peel(ref.Hash())
		if err != nil {
			return err
		}
		tagged[hash] = append(tagged[hash], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	return tagged, nil
}

// peel returns the commit a tag reference points to.
func (r *Repository) peel(hash plumbing.Hash) (plumbing.Hash, error) {
	tag, err := r.repo.TagObject(hash)
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// lightweight tag
		return hash, nil
	case err != nil:
		return plumbing.ZeroHash, fmt.Errorf("failed to read tag object: %w", err)
	}
	commit, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to peel tag %s: %w", tag.Name, err)
	}
	return commit.Hash, nil
}

// CommitsSince returns the commits reachable from HEAD but not from tag,
// newest first. An empty tag returns HEAD's whole history.
func (r *Repository) CommitsSince(tag string) ([]*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	excluded := map[plumbing.Hash]bool{}
	if tag != "" {
		ref, err := r.repo.Tag(tag)
		if err != nil {
			return nil, fmt.Errorf("failed to look up tag %s: %w", tag, err)
		}
		base, err := r.peel(ref.Hash())
		if err != nil {
			return nil, err
		}
		if err := r.walk(base, func(c *object.Commit) error {
			excluded[c.Hash] = true
			return nil
		}); err != nil {
			return nil, err
		}
	}

	var commits []*object.Commit
	err = r.walk(head.Hash(), func(c *object.Commit) error {
		if !excluded[c.Hash] {
			commits = append(commits, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func (r *Repository) walk(from plumbing.Hash, fn func(*object.Commit) error) error {
	iter, err := r.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	if err := iter.ForEach(fn); err != nil {
		return fmt.Errorf("failed to iterate commits: %w", err)
	}
	return nil
}

// HeadSHA returns the full hash of the current commit.
func (r *Repository) HeadSHA() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the checked out branch.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", errDetachedHead
	}
	return head.Name().Short(), nil
}

// CommitAll commits every modification of tracked files with message.
func (r *Repository) CommitAll(message string) error {
	if r.rt.Flags.DryRun {
		r.log.Infof("dry-run: git commit -am '%s'", message)
		return nil
	}

	sig, err := r.signature()
	if err != nil {
		return err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{All: true, Author: sig, Committer: sig})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	r.log.Debug("created commit " + hash.String()[:7])
	return nil
}

// CreateAnnotatedTag tags HEAD with an annotated tag.
func (r *Repository) CreateAnnotatedTag(name, message string) error {
	if r.rt.Flags.DryRun {
		r.log.Infof("dry-run: git tag -a '%s' -m '%s'", name, message)
		return nil
	}

	sig, err := r.signature()
	if err != nil {
		return err
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if _, err := r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  sig,
		Message: message,
	}); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// Push pushes the current branch to the default remote.
func (r *Repository) Push(ctx context.Context) error {
	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	ref := plumbing.NewBranchReferenceName(branch)
	return r.push(ctx, "push", ref.String()+":"+ref.String())
}

// PushTag pushes a single tag to the default remote.
func (r *Repository) PushTag(ctx context.Context, name string) error {
	ref := plumbing.NewTagReferenceName(name)
	return r.push(ctx, "push tag", ref.String()+":"+ref.String())
}
