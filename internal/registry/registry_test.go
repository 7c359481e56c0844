package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadOrCreate(filepath.Join(t.TempDir(), "registry.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegisterAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	info := RepositoryInfo{ID: "r1", Name: "svc-a", Path: "/repos/svc-a", Active: true, Tags: []string{"backend", "go"}}
	require.NoError(t, reg.Register(info))

	got, ok, err := reg.Get("r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "svc-a", got.Name)
	require.ElementsMatch(t, []string{"backend", "go"}, got.Tags)
}

func TestRegisterUpsert(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Name: "old", Active: true}))
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Name: "new", Active: true}))

	got, ok, err := reg.Get("r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", got.Name)
}

func TestListActiveExcludesInactive(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Active: true}))
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r2", Active: false}))

	active, err := reg.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "r1", active[0].ID)

	all, err := reg.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAddRelationBothDirections(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Active: true}))
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r2", Active: true}))
	require.NoError(t, reg.AddRelation(RepositoryRelation{SourceID: "r1", TargetID: "r2", Kind: RelationDependency}))

	rels, err := reg.GetRelations("r2")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, RelationDependency, rels[0].Kind)

	rels, err = reg.GetRelations("r1")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, RelationDependency, rels[0].Kind)
}

func TestCustomRelationKindRoundTrips(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Active: true}))
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r2", Active: true}))
	custom := RelationKind("feature_flag_link")
	require.NoError(t, reg.AddRelation(RepositoryRelation{SourceID: "r1", TargetID: "r2", Kind: custom}))

	rels, err := reg.GetRelations("r1")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, custom, rels[0].Kind)
}

func TestFindByTag(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r1", Active: true, Tags: []string{"api"}}))
	require.NoError(t, reg.Register(RepositoryInfo{ID: "r2", Active: true, Tags: []string{"apigateway"}}))

	found, err := reg.FindByTag("api")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "r1", found[0].ID)
}
