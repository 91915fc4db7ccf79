package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/sgaunet/auto-release/pkg/registry"
)

// Querier is the registry view needed to resolve versions.
type Querier interface {
	// Show returns the metadata of a package, or registry.ErrNotFound.
	Show(ctx context.Context, name string) (*registry.Package, error)
	// ShowVersion resolves name@versionOrTag, returning "" when unknown.
	ShowVersion(ctx context.Context, name, versionOrTag string) (string, error)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Old          string
	New          string
	DistTag      string
	IsNewPackage bool
}

// Unchanged reports whether the candidate is already published.
func (r Resolution) Unchanged() bool {
	return r.Old == r.New
}

// Resolve determines the previously published version for candidate.
//
// A package unknown to the registry is a first publish with an empty old
// version. When candidate itself is already published, Old equals New and
// callers must stop. Otherwise the old version is the one behind the
// candidate's distribution tag, falling back to the latest tag.
func Resolve(ctx context.Context, q Querier, name, candidate string) (Resolution, error) {
	res := Resolution{New: candidate, DistTag: ExtractDistTag(candidate)}

	if _, err := q.Show(ctx, name); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			res.IsNewPackage = true
			return res, nil
		}
		return Resolution{}, fmt.Errorf("failed to query registry for %s: %w", name, err)
	}

	existing, err := q.ShowVersion(ctx, name, candidate)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to query registry for %s@%s: %w", name, candidate, err)
	}
	if existing != "" {
		res.Old = existing
		return res, nil
	}

	old, err := q.ShowVersion(ctx, name, res.DistTag)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to query registry for %s@%s: %w", name, res.DistTag, err)
	}
	if old == "" && res.DistTag != LatestTag {
		old, err = q.ShowVersion(ctx, name, LatestTag)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to query registry for %s@%s: %w", name, LatestTag, err)
		}
	}
	res.Old = old
	return res, nil
}
