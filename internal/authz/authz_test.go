package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	s := NewSession(uuid.New(), "op", "Operator", []string{"user"}, []string{"user:view", "role:view"}, nil)

	assert.True(t, HasPermission(s, "user:view"))
	assert.True(t, HasPermission(s, "role:view"))
	assert.False(t, HasPermission(s, "user:delete"))
	assert.False(t, HasPermission(s, ""))
	assert.False(t, HasPermission(s, "not-a-permission"))
}

func TestHasPermission_NilAndEmptySession(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.False(t, HasPermission(nil, "user:view"))
	})

	empty := NewSession(uuid.New(), "x", "x", nil, nil, nil)
	assert.False(t, HasPermission(empty, "user:view"))
	assert.Empty(t, empty.Permissions)
	assert.NotNil(t, empty.Permissions)
}

func TestHasPermission_DecodedSessionWithoutIndex(t *testing.T) {
	s := &Session{Permissions: []string{"dashboard:view"}}
	assert.True(t, HasPermission(s, "dashboard:view"))
	assert.False(t, HasPermission(s, "user:view"))
}

func TestHasAnyAndRequire(t *testing.T) {
	s := NewSession(uuid.New(), "op", "Operator", nil, []string{"registration:view"}, nil)

	assert.True(t, HasAny(s, "user:view", "registration:view"))
	assert.False(t, HasAny(s, "user:view", "role:view"))
	assert.False(t, HasAny(s))

	assert.NoError(t, Require(s, "registration:view"))
	assert.ErrorIs(t, Require(s, "registration:export"), ErrForbidden)
	assert.ErrorIs(t, Require(nil, "registration:view"), ErrForbidden)

	assert.NoError(t, RequireAny(s, "role:view", "registration:view"))
	assert.ErrorIs(t, RequireAny(s, "role:view"), ErrForbidden)
}

func TestScope(t *testing.T) {
	t.Run("no regions is unrestricted", func(t *testing.T) {
		sc := Scope(NewSession(uuid.New(), "a", "a", nil, nil, nil))
		assert.True(t, sc.Unrestricted())
		assert.True(t, sc.Allows(uuid.New()))
		assert.Nil(t, sc.IDs())
	})

	t.Run("assigned regions restrict", func(t *testing.T) {
		r1, r2 := uuid.New(), uuid.New()
		sc := Scope(NewSession(uuid.New(), "a", "a", nil, nil, []string{r1.String(), "garbage"}))
		require.False(t, sc.Unrestricted())
		assert.True(t, sc.Allows(r1))
		assert.False(t, sc.Allows(r2))
		assert.ElementsMatch(t, []uuid.UUID{r1}, sc.IDs())
	})

	t.Run("nil session allows nothing", func(t *testing.T) {
		sc := Scope(nil)
		assert.False(t, sc.Unrestricted())
		assert.False(t, sc.Allows(uuid.New()))
		assert.Empty(t, sc.IDs())
	})
}
