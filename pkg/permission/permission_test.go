package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/permission"
)

type stubRole struct {
	owner bool
	slugs []string
}

func (r *stubRole) OwnsOrganization() bool {
	return r != nil && r.owner
}

func (r *stubRole) PermissionSlugs() []string {
	if r == nil {
		return nil
	}
	return r.slugs
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("owner role resolves to wildcard", func(t *testing.T) {
		t.Parallel()
		set := permission.Resolve(&stubRole{owner: true})
		assert.True(t, set.IsWildcard())
		assert.True(t, set.Has("anything.at.all"))
	})

	t.Run("regular role resolves to explicit set", func(t *testing.T) {
		t.Parallel()
		set := permission.Resolve(&stubRole{slugs: []string{"users.view", "invitations.create"}})
		assert.False(t, set.IsWildcard())
		assert.True(t, set.Has("users.view"))
		assert.False(t, set.Has("users.delete"))
	})

	t.Run("nil role fails closed", func(t *testing.T) {
		t.Parallel()
		set := permission.Resolve(nil)
		assert.False(t, set.IsWildcard())
		assert.False(t, set.Has("users.view"))
		assert.Zero(t, set.Len())
	})

	t.Run("typed nil role fails closed", func(t *testing.T) {
		t.Parallel()
		var role *stubRole
		set := permission.Resolve(role)
		assert.False(t, set.IsWildcard())
		assert.False(t, set.Has("users.view"))
	})
}

func TestSet_Has(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  permission.Set
		slug string
		want bool
	}{
		{name: "wildcard grants anything", set: permission.Wildcard(), slug: "x", want: true},
		{name: "wildcard grants empty slug", set: permission.Wildcard(), slug: "", want: true},
		{name: "member slug", set: permission.Explicit("a", "b"), slug: "a", want: true},
		{name: "missing slug", set: permission.Explicit("a", "b"), slug: "c", want: false},
		{name: "empty set", set: permission.Explicit(), slug: "a", want: false},
		{name: "empty slug not granted by explicit set", set: permission.Explicit("a"), slug: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.set.Has(tt.slug))
		})
	}
}

func TestSet_HasAnyHasAll(t *testing.T) {
	t.Parallel()

	set := permission.Explicit("users.view", "invitations.view")

	assert.True(t, set.HasAny("users.view", "users.delete"))
	assert.False(t, set.HasAny("users.delete", "roles.edit"))
	assert.False(t, set.HasAny())

	assert.True(t, set.HasAll("users.view", "invitations.view"))
	assert.False(t, set.HasAll("users.view", "users.delete"))
	assert.True(t, set.HasAll())

	wild := permission.Wildcard()
	assert.True(t, wild.HasAny("whatever"))
	assert.True(t, wild.HasAll("a", "b", "c"))
	assert.True(t, wild.HasAny())
}

func TestSet_Slugs(t *testing.T) {
	t.Parallel()

	set := permission.Explicit("b", "a", "b", "")
	require.Equal(t, []string{"a", "b"}, set.Slugs())
	assert.Equal(t, 2, set.Len())

	assert.Nil(t, permission.Wildcard().Slugs())
	assert.Nil(t, permission.Explicit().Slugs())
}
