package version_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sgaunet/auto-release/pkg/registry"
	"github.com/sgaunet/auto-release/pkg/version"
	"github.com/sgaunet/auto-release/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NewPackage(t *testing.T) {
	q := mocks.NewRegistry()

	res, err := version.Resolve(context.Background(), q, "widget", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, version.Resolution{Old: "", New: "1.0.0", DistTag: "latest", IsNewPackage: true}, res)
	assert.False(t, res.Unchanged())
	assert.Equal(t, 1, q.GetCallCount("Show"))
	assert.Equal(t, 0, q.GetCallCount("ShowVersion"))
}

func TestResolve_PrereleaseUsesDistTag(t *testing.T) {
	q := mocks.NewRegistry()
	q.AddPackage("widget", map[string]string{"latest": "1.8.0", "rc": "1.9.0"}, "1.8.0", "1.9.0")

	res, err := version.Resolve(context.Background(), q, "widget", "2.0.0-rc1")
	require.NoError(t, err)

	assert.Equal(t, "1.9.0", res.Old)
	assert.Equal(t, "2.0.0-rc1", res.New)
	assert.Equal(t, "rc", res.DistTag)
	assert.False(t, res.IsNewPackage)
}

func TestResolve_FallsBackToLatest(t *testing.T) {
	q := mocks.NewRegistry()
	q.AddPackage("widget", map[string]string{"latest": "1.8.0"}, "1.8.0")

	res, err := version.Resolve(context.Background(), q, "widget", "2.0.0-beta.1")
	require.NoError(t, err)

	assert.Equal(t, "1.8.0", res.Old)
	assert.Equal(t, "beta", res.DistTag)
}

func TestResolve_AlreadyPublished(t *testing.T) {
	q := mocks.NewRegistry()
	q.AddPackage("widget", map[string]string{"latest": "1.8.0"}, "1.7.0", "1.8.0")

	res, err := version.Resolve(context.Background(), q, "widget", "1.7.0")
	require.NoError(t, err)
	assert.True(t, res.Unchanged())
	assert.Equal(t, "1.7.0", res.Old)
}

func TestResolve_Idempotent(t *testing.T) {
	q := mocks.NewRegistry()
	q.AddPackage("widget", map[string]string{"latest": "1.0.0"}, "1.0.0")

	first, err := version.Resolve(context.Background(), q, "widget", "1.1.0")
	require.NoError(t, err)
	second, err := version.Resolve(context.Background(), q, "widget", "1.1.0")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "1.0.0", first.Old)
}

func TestResolve_RegistryFailurePropagates(t *testing.T) {
	boom := errors.New("ETIMEDOUT")

	q := mocks.NewRegistry()
	q.ShowErr = boom
	_, err := version.Resolve(context.Background(), q, "widget", "1.0.0")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, registry.ErrNotFound)

	q = mocks.NewRegistry()
	q.AddPackage("widget", map[string]string{"latest": "1.0.0"}, "1.0.0")
	q.ShowVersionErr = boom
	_, err = version.Resolve(context.Background(), q, "widget", "1.1.0")
	require.ErrorIs(t, err, boom)
}
