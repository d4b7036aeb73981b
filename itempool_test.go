package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemPoolFIFO(t *testing.T) {
	pool := NewItemPool()
	assert.True(t, pool.IsEmpty())
	assert.Nil(t, pool.Get())

	first := &Item{ID: "a", Responses: []string{"x"}}
	second := &Item{ID: "b", Responses: []string{"x"}}
	pool.Add(first)
	pool.Add(second)

	assert.Equal(t, 2, pool.Size())
	assert.Equal(t, StatusTentative, first.Status)

	got := pool.Get()
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
	got = pool.Get()
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
	assert.True(t, pool.IsEmpty())
}

func TestItemPoolRemove(t *testing.T) {
	pool := NewItemPool()
	pool.Add(&Item{ID: "a", Responses: []string{"x"}})
	pool.Add(&Item{ID: "b", Responses: []string{"x"}})

	pool.Remove("a")
	assert.Equal(t, 1, pool.Size())

	got := pool.Get()
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}
