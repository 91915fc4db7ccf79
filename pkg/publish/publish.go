// Package publish runs the release pipeline: version resolution, changelog,
// commit, tag and push, release creation and registry publish, in that
// order. Each step runs only when the previous one succeeded.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sgaunet/auto-release/internal/ui"
	"github.com/sgaunet/auto-release/pkg/changelog"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/manifest"
	"github.com/sgaunet/auto-release/pkg/platform"
	"github.com/sgaunet/auto-release/pkg/registry"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/auto-release/pkg/version"
	"github.com/sgaunet/bullets"
)

// Repository is the source-control view used by the pipeline.
type Repository interface {
	changelog.Source
	IsDirty() (bool, error)
	CommitAll(message string) error
	Push(ctx context.Context) error
	CreateAnnotatedTag(name, message string) error
	PushTag(ctx context.Context, name string) error
	HeadSHA() (string, error)
}

// InfoResolver resolves the provider of a repository URL.
type InfoResolver func(ctx context.Context, repositoryURL string) (platform.Info, error)

// ReleaserFactory builds the releaser of a resolved provider.
type ReleaserFactory func(info platform.Info) (platform.Releaser, error)

// Deps are the collaborators of a Publisher.
type Deps struct {
	Repo        Repository
	Registry    version.Querier
	Exec        runner.Executor
	Prompter    ui.Prompter
	ResolveInfo InfoResolver
	NewReleaser ReleaserFactory
	Log         *bullets.Logger
}

// Result summarises a completed run.
type Result struct {
	Resolution version.Resolution
	Tag        string
	Title      string
	LastTag    string
	Changelog  []string
	Request    platform.Request
	// Committed is true when a version commit was created.
	Committed bool
}

// Publisher runs the release pipeline.
type Publisher struct {
	rt   config.Runtime
	cfg  *config.Config
	deps Deps
	log  *bullets.Logger
}

// New creates a Publisher.
func New(rt config.Runtime, cfg *config.Config, deps Deps) *Publisher {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Publisher{rt: rt, cfg: cfg, deps: deps, log: deps.Log}
}

func (p *Publisher) interactive() bool {
	return !p.rt.Flags.CI
}

// Run executes the pipeline. A benign failure.Error means there was nothing
// to publish.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	dirty, err := p.deps.Repo.IsDirty()
	if err != nil {
		return nil, err
	}
	if dirty && !p.rt.Flags.AllowDirty && !p.rt.Flags.CI {
		return nil, failure.Expected("You have uncommited changes... Commit your changes first")
	}

	m, err := manifest.Load(p.rt.Workdir)
	if err != nil {
		return nil, failure.Wrap("Cannot read "+manifest.FileName, err)
	}
	repoURL := m.RepositoryURL()
	if repoURL == "" {
		repoURL = p.rt.Getenv("npm_package_repository_url")
	}
	if repoURL == "" {
		return nil, failure.Expected("You must specify repository.url in your package.json")
	}

	info, err := p.deps.ResolveInfo(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	p.log.Debug("Releasing to " + platform.Describe(info))

	res, err := p.resolveVersion(ctx, m)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Resolution: res,
		Tag:        changelog.TagName(res.New),
		Title:      p.cfg.Publish.CommitPrefix + res.New,
	}

	exists, err := p.deps.Repo.TagExists(result.Tag)
	if err != nil {
		return nil, err
	}
	if exists {
		msg := fmt.Sprintf("Git tag %s already exists", result.Tag)
		if res.IsNewPackage {
			return nil, failure.Benign(msg)
		}
		return nil, failure.Expected(msg)
	}

	result.LastTag, result.Changelog, err = changelog.Derive(p.deps.Repo, res.Old)
	if err != nil {
		return nil, err
	}
	p.narrate(result, dirty)

	if p.interactive() {
		ok, err := p.deps.Prompter.Confirm("Is this okay?", false)
		if err != nil && !errors.Is(err, ui.ErrCancelled) {
			return nil, err
		}
		if !ok {
			return nil, failure.Expected("stopping.")
		}
	}

	if err := p.commitTagPush(ctx, m, result, dirty); err != nil {
		return nil, err
	}

	if err := p.release(ctx, info, result); err != nil {
		return nil, err
	}

	if err := p.publish(ctx, m, res.DistTag); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveVersion asks for the new version in interactive mode and resolves
// it against the registry. An already published version is a benign halt.
func (p *Publisher) resolveVersion(ctx context.Context, m *manifest.Manifest) (version.Resolution, error) {
	p.log.Info("Current version: " + m.Version)

	candidate := m.Version
	if p.interactive() {
		answer, err := p.deps.Prompter.Input("New version", m.Version)
		if errors.Is(err, ui.ErrCancelled) {
			return version.Resolution{}, failure.Expected("stopping.")
		}
		if err != nil {
			return version.Resolution{}, err
		}
		candidate = strings.TrimSpace(answer)
	}
	if err := version.Validate(candidate); err != nil {
		return version.Resolution{}, failure.Wrap("Invalid version: "+candidate, err)
	}

	res, err := version.Resolve(ctx, p.deps.Registry, m.Name, candidate)
	if err != nil {
		return version.Resolution{}, err
	}
	if res.Unchanged() {
		return version.Resolution{}, failure.Benign(fmt.Sprintf("Version %s of %s is already published, nothing to do", res.New, m.Name))
	}
	return res, nil
}

func (p *Publisher) narrate(r *Result, dirty bool) {
	lastTag := r.LastTag
	if lastTag == "" {
		lastTag = "<no tags found>"
	}
	if r.Resolution.Old != "" {
		p.log.Info("Previous version: " + r.Resolution.Old)
	} else {
		p.log.Info("First publish of this package")
	}
	p.log.Info("Creating release")
	p.log.Info("  name: " + r.Title)
	p.log.Info("  tag: " + r.Tag)
	p.log.Info("  dist-tag: " + r.Resolution.DistTag)
	p.log.Info("  lastTag: " + lastTag)
	if dirty && p.rt.Flags.AllowDirty {
		p.log.Info("Creating commit with message: " + r.Title)
	}
	if p.rt.Flags.DryRun {
		p.log.Info("Dry run: yes")
	}
	p.log.Info("Changelog:")
	for _, line := range r.Changelog {
		p.log.Info(line)
	}
}

// commitTagPush patches the manifest when the version changed, commits and
// pushes, then creates and pushes the release tag.
func (p *Publisher) commitTagPush(ctx context.Context, m *manifest.Manifest, r *Result, dirty bool) error {
	manifestChanged := r.Resolution.New != m.Version
	if manifestChanged {
		if p.rt.Flags.DryRun {
			p.log.Info("dry-run: writing new package json with version " + r.Resolution.New)
		}
		if _, err := manifest.WriteVersion(p.rt.Workdir, m, r.Resolution.New, p.rt.Flags.DryRun); err != nil {
			return failure.Wrap("Cannot patch "+manifest.FileName, err)
		}
	}

	if manifestChanged || (dirty && p.rt.Flags.AllowDirty) {
		if err := p.deps.Repo.CommitAll(r.Title); err != nil {
			return failure.Wrap("git commit failed", err)
		}
		r.Committed = true
		if err := p.deps.Repo.Push(ctx); err != nil {
			return failure.Wrap("git push failed", err)
		}
	}

	if err := p.deps.Repo.CreateAnnotatedTag(r.Tag, r.Title); err != nil {
		return failure.Wrap("git tag failed", err)
	}
	if err := p.deps.Repo.PushTag(ctx, r.Tag); err != nil {
		return failure.Wrap("git push failed", err)
	}
	return nil
}

func (p *Publisher) release(ctx context.Context, info platform.Info, r *Result) error {
	sha, err := p.deps.Repo.HeadSHA()
	if err != nil {
		return err
	}
	draft := !p.rt.Flags.NoDraft
	r.Request = platform.Request{
		Tag:        r.Tag,
		Title:      r.Title,
		Body:       changelog.Body(r.Changelog),
		Prerelease: version.IsPrerelease(r.Resolution.New),
		Ref:        sha,
		Draft:      &draft,
	}

	releaser, err := p.deps.NewReleaser(info)
	if err != nil {
		return err
	}
	return releaser.CreateRelease(ctx, r.Request)
}

func (p *Publisher) publish(ctx context.Context, m *manifest.Manifest, distTag string) error {
	name, args, err := registry.PublishArgs(p.cfg.Registry.Client, m.IsPublic(), distTag)
	if err != nil {
		return err
	}
	if err := p.deps.Exec.Run(ctx, name, args...); err != nil {
		return failure.Wrap("", err)
	}
	return nil
}
