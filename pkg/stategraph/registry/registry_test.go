package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := New[string, string]()
	r.Register("k", "old")
	r.Register("k", "new")

	v, _ := r.Get("k")
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Delete(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Delete("a")

	assert.False(t, r.Has("a"))
	r.Delete("a") // deleting again is a no-op
}

func TestRegistry_Keys(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)

	assert.ElementsMatch(t, []string{"a", "b"}, r.Keys())
}

func TestRegistry_RangeStopsEarly(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)
	r.Register("c", 3)

	seen := 0
	r.Range(func(k string, v int) bool {
		seen++
		return false
	})

	assert.Equal(t, 1, seen)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Register(n, n*2)
		}(i)
		go func(n int) {
			defer wg.Done()
			r.Get(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
