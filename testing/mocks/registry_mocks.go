package mocks

import (
	"context"
	"fmt"
	"slices"

	"github.com/sgaunet/auto-release/pkg/registry"
	"github.com/sgaunet/auto-release/pkg/version"
)

// Registry is an in-memory version.Querier.
type Registry struct {
	callTracker

	packages map[string]*registry.Package

	ShowErr        error
	ShowVersionErr error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{packages: map[string]*registry.Package{}}
}

// AddPackage publishes versions of name with the given dist-tags.
func (m *Registry) AddPackage(name string, distTags map[string]string, versions ...string) {
	m.packages[name] = &registry.Package{Name: name, DistTags: distTags, Versions: versions}
}

// Show implements version.Querier.
func (m *Registry) Show(_ context.Context, name string) (*registry.Package, error) {
	m.trackCall("Show", map[string]any{"name": name})
	if m.ShowErr != nil {
		return nil, m.ShowErr
	}
	pkg, ok := m.packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, name)
	}
	return pkg, nil
}

// ShowVersion implements version.Querier.
func (m *Registry) ShowVersion(_ context.Context, name, versionOrTag string) (string, error) {
	m.trackCall("ShowVersion", map[string]any{"name": name, "versionOrTag": versionOrTag})
	if m.ShowVersionErr != nil {
		return "", m.ShowVersionErr
	}
	pkg, ok := m.packages[name]
	if !ok {
		return "", nil
	}
	if v, ok := pkg.DistTags[versionOrTag]; ok {
		return v, nil
	}
	if slices.Contains(pkg.Versions, versionOrTag) {
		return versionOrTag, nil
	}
	return "", nil
}

// Ensure Registry implements version.Querier interface.
var _ version.Querier = (*Registry)(nil)
