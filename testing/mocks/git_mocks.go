package mocks

import (
	"context"
	"slices"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sgaunet/auto-release/pkg/publish"
)

// Repository is an in-memory publish.Repository.
type Repository struct {
	callTracker

	// State
	Dirty      bool
	Tags       []string
	NearestTag string
	Commits    []*object.Commit
	HeadHash   string

	// Configurable errors
	IsDirtyError      error
	HasTagsError      error
	TagExistsError    error
	DescribeError     error
	CommitsSinceError error
	CommitAllError    error
	PushError         error
	CreateTagError    error
	PushTagError      error
	HeadSHAError      error
}

// NewRepository creates a clean repository without tags.
func NewRepository() *Repository {
	return &Repository{HeadHash: "abc123def456789012345678901234567890abcd"}
}

// IsDirty implements publish.Repository.
func (m *Repository) IsDirty() (bool, error) {
	m.trackCall("IsDirty", map[string]any{})
	return m.Dirty, m.IsDirtyError
}

// HasTags implements changelog.Source.
func (m *Repository) HasTags() (bool, error) {
	m.trackCall("HasTags", map[string]any{})
	return len(m.Tags) > 0, m.HasTagsError
}

// TagExists implements changelog.Source.
func (m *Repository) TagExists(name string) (bool, error) {
	m.trackCall("TagExists", map[string]any{"name": name})
	return slices.Contains(m.Tags, name), m.TagExistsError
}

// DescribeNearestTag implements changelog.Source.
func (m *Repository) DescribeNearestTag() (string, error) {
	m.trackCall("DescribeNearestTag", map[string]any{})
	return m.NearestTag, m.DescribeError
}

// CommitsSince implements changelog.Source.
func (m *Repository) CommitsSince(tag string) ([]*object.Commit, error) {
	m.trackCall("CommitsSince", map[string]any{"tag": tag})
	if m.CommitsSinceError != nil {
		return nil, m.CommitsSinceError
	}
	return m.Commits, nil
}

// CommitAll implements publish.Repository.
func (m *Repository) CommitAll(message string) error {
	m.trackCall("CommitAll", map[string]any{"message": message})
	if m.CommitAllError == nil {
		m.Dirty = false
	}
	return m.CommitAllError
}

// Push implements publish.Repository.
func (m *Repository) Push(_ context.Context) error {
	m.trackCall("Push", map[string]any{})
	return m.PushError
}

// CreateAnnotatedTag implements publish.Repository.
func (m *Repository) CreateAnnotatedTag(name, message string) error {
	m.trackCall("CreateAnnotatedTag", map[string]any{"name": name, "message": message})
	if m.CreateTagError != nil {
		return m.CreateTagError
	}
	m.Tags = append(m.Tags, name)
	return nil
}

// PushTag implements publish.Repository.
func (m *Repository) PushTag(_ context.Context, name string) error {
	m.trackCall("PushTag", map[string]any{"name": name})
	return m.PushTagError
}

// HeadSHA implements publish.Repository.
func (m *Repository) HeadSHA() (string, error) {
	m.trackCall("HeadSHA", map[string]any{})
	return m.HeadHash, m.HeadSHAError
}

// Ensure Repository implements publish.Repository interface.
var _ publish.Repository = (*Repository)(nil)
