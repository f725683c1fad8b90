package vault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore(nil)

	require.NoError(t, s.Set("wallet", []byte("blob"), Options{}))

	v, ok, err := s.Get("wallet", Options{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("blob"), v)

	// Mutating the returned slice must not affect the stored copy.
	v[0] = 'x'
	v2, ok, err := s.Get("wallet", Options{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("blob"), v2)
}

func TestMemStoreMissingKeyIsNotAnError(t *testing.T) {
	s := NewMemStore(nil)

	v, ok, err := s.Get("nothing", Options{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	// Deleting an absent key is also fine.
	require.NoError(t, s.Delete("nothing"))
}

func TestMemStoreRequireAuth(t *testing.T) {
	t.Run("declined gesture maps to ErrAuthDenied", func(t *testing.T) {
		s := NewMemStore(func(reason string) (bool, error) { return false, nil })
		require.NoError(t, s.Set("mnemonic", []byte("secret"), Options{RequireAuth: true}))

		_, _, err := s.Get("mnemonic", Options{RequireAuth: true})
		require.ErrorIs(t, err, ErrAuthDenied)
	})

	t.Run("gesture failure is not a denial", func(t *testing.T) {
		boom := errors.New("sensor fault")
		s := NewMemStore(func(reason string) (bool, error) { return false, boom })

		_, _, err := s.Get("mnemonic", Options{RequireAuth: true})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrAuthDenied)
		require.ErrorIs(t, err, boom)
	})

	t.Run("plain reads skip the gesture", func(t *testing.T) {
		called := false
		s := NewMemStore(func(reason string) (bool, error) { called = true; return false, nil })
		require.NoError(t, s.Set("wallet", []byte("public"), Options{}))

		_, ok, err := s.Get("wallet", Options{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, called)
	})

	t.Run("item stored with RequireAuth demands the gesture on every read", func(t *testing.T) {
		approved := false
		s := NewMemStore(func(reason string) (bool, error) { return approved, nil })
		require.NoError(t, s.Set("mnemonic", []byte("secret"), Options{RequireAuth: true}))

		// The item attribute gates even a plain read.
		_, _, err := s.Get("mnemonic", Options{})
		require.ErrorIs(t, err, ErrAuthDenied)

		approved = true
		v, ok, err := s.Get("mnemonic", Options{})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("secret"), v)
	})

	t.Run("rewriting without RequireAuth clears the attribute", func(t *testing.T) {
		called := false
		s := NewMemStore(func(reason string) (bool, error) { called = true; return false, nil })
		require.NoError(t, s.Set("wallet", []byte("blob"), Options{RequireAuth: true}))
		require.NoError(t, s.Set("wallet", []byte("blob"), Options{}))

		_, ok, err := s.Get("wallet", Options{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, called)
	})
}

func TestMemStoreKeysAndClear(t *testing.T) {
	s := NewMemStore(nil)
	require.NoError(t, s.Set("a", []byte("1"), Options{}))
	require.NoError(t, s.Set("b", []byte("2"), Options{}))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Clear())
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStoreErrorWrapping(t *testing.T) {
	inner := errors.New("backend down")
	err := wrapStoreError("set", "wallet", inner)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "set", se.Op)
	assert.Equal(t, "wallet", se.Key)
	require.ErrorIs(t, err, inner)

	assert.Nil(t, wrapStoreError("set", "wallet", nil))
}
