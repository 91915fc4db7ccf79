package mocks

import (
	"context"

	"github.com/sgaunet/auto-release/pkg/platform"
)

// Releaser is a mock implementation of platform.Releaser with call tracking.
type Releaser struct {
	callTracker

	CreateReleaseError error
	Requests           []platform.Request
}

// NewReleaser creates a new mock releaser.
func NewReleaser() *Releaser {
	return &Releaser{}
}

// CreateRelease implements platform.Releaser.
func (m *Releaser) CreateRelease(_ context.Context, req platform.Request) error {
	m.trackCall("CreateRelease", map[string]any{
		"tag":        req.Tag,
		"title":      req.Title,
		"prerelease": req.Prerelease,
		"ref":        req.Ref,
	})
	m.Requests = append(m.Requests, req)
	return m.CreateReleaseError
}

// Ensure Releaser implements platform.Releaser interface.
var _ platform.Releaser = (*Releaser)(nil)
