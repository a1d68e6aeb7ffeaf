package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/fieldkit/core/permission"
)

type staticSource []string

func (s staticSource) Permissions() []string { return s }

func TestFacade_Has(t *testing.T) {
	t.Parallel()

	f := permission.NewFacade(staticSource{"visit:create", "outlet:register"})

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()

		assert.True(t, f.Has("visit:create"))
		assert.True(t, f.Has("outlet:register"))
		assert.False(t, f.Has("visit:delete"))
	})

	t.Run("case-sensitive", func(t *testing.T) {
		t.Parallel()

		assert.False(t, f.Has("Visit:Create"))
	})

	t.Run("empty source holds nothing", func(t *testing.T) {
		t.Parallel()

		empty := permission.NewFacade(staticSource{})
		assert.False(t, empty.Has("visit:create"))
	})

	t.Run("nil-safe", func(t *testing.T) {
		t.Parallel()

		var f *permission.Facade
		assert.False(t, f.Has("visit:create"))
		assert.False(t, permission.NewFacade(nil).Has("visit:create"))
	})
}

func TestFacade_HasAnyAll(t *testing.T) {
	t.Parallel()

	f := permission.NewFacade(staticSource{"a", "b"})

	assert.True(t, f.HasAny("c", "b"))
	assert.False(t, f.HasAny("c", "d"))
	assert.False(t, f.HasAny())

	assert.True(t, f.HasAll("a", "b"))
	assert.False(t, f.HasAll("a", "c"))
	assert.True(t, f.HasAll())
}

// mutableSource verifies the facade reads through on every call.
type mutableSource struct {
	perms []string
}

func (m *mutableSource) Permissions() []string { return m.perms }

func TestFacade_ReflectsLatestState(t *testing.T) {
	t.Parallel()

	src := &mutableSource{perms: []string{"a"}}
	f := permission.NewFacade(src)

	assert.True(t, f.Has("a"))

	src.perms = []string{"b"}
	assert.False(t, f.Has("a"))
	assert.True(t, f.Has("b"))
}
