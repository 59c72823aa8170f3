package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okizeme/bytemusic/internal/infra/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestService_ToggleOrder(t *testing.T) {
	svc := New(testStore(t))

	assert.True(t, svc.Toggle("a"))
	assert.True(t, svc.Toggle("b"))
	assert.True(t, svc.Toggle("c"))

	assert.Equal(t, []string{"c", "b", "a"}, svc.List(), "most recently favorited first")
	assert.True(t, svc.IsFavorite("b"))
	assert.False(t, svc.IsFavorite("x"))
}

func TestService_DoubleToggleRestoresState(t *testing.T) {
	svc := New(testStore(t))
	svc.Toggle("a")
	svc.Toggle("b")
	svc.Toggle("c")
	before := svc.List()

	assert.True(t, svc.Toggle("x"))
	assert.False(t, svc.Toggle("x"))

	assert.Equal(t, before, svc.List(), "membership and relative order restored")
	assert.False(t, svc.IsFavorite("x"))
}

func TestService_Remove(t *testing.T) {
	svc := New(testStore(t))
	svc.Toggle("a")
	svc.Toggle("b")

	svc.Remove("a")
	svc.Remove("a") // idempotent

	assert.Equal(t, []string{"b"}, svc.List())
	assert.False(t, svc.IsFavorite("a"))
}

func TestService_PersistsAcrossReload(t *testing.T) {
	st := testStore(t)

	svc := New(st)
	svc.Toggle("a")
	svc.Toggle("b")

	reloaded := New(st)
	assert.Equal(t, []string{"b", "a"}, reloaded.List())
	assert.True(t, reloaded.IsFavorite("a"))
}
