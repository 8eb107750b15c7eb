package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Stop()

	c.Set("k", 42)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(20*time.Millisecond, 10)
	defer c.Stop()

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Stop()

	c.Set("first", 1)
	time.Sleep(2 * time.Millisecond)
	c.Set("second", 2)
	time.Sleep(2 * time.Millisecond)
	c.Set("third", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok, "the oldest entry is evicted at capacity")
	_, ok = c.Get("third")
	assert.True(t, ok)
}

func TestCacheZeroCapacityStoresNothing(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Stop()

	c.Set("k", 1)
	assert.Equal(t, 0, c.Len())
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Stop()

	c.Set("clientA|2024-10|x", 1)
	c.Set("clientA|2024-11|x", 2)
	c.Set("clientB|2024-10|x", 3)

	c.InvalidatePrefix("clientA|")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("clientB|2024-10|x")
	assert.True(t, ok)
}

func TestCacheStats(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Stop()

	c.Set("k", 1)
	c.Get("k")
	c.Get("nope")

	hits, misses, entries := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, entries)
}

func TestKeyIsOrderInsensitive(t *testing.T) {
	a := Key("hash", []string{"2024-11", "2024-10"}, []string{"B", "A"})
	b := Key("hash", []string{"2024-10", "2024-11"}, []string{"A", "B"})
	assert.Equal(t, a, b)

	c := Key("otherhash", []string{"2024-10", "2024-11"}, []string{"A", "B"})
	assert.NotEqual(t, a, c)
}

func TestKeyDoesNotMutateInputs(t *testing.T) {
	periods := []string{"2024-11", "2024-10"}
	Key("hash", periods, nil)
	assert.Equal(t, []string{"2024-11", "2024-10"}, periods)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		HashBytes([]byte("abc")))
	assert.NotEqual(t, HashBytes([]byte("a")), HashBytes([]byte("b")))
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute, 100)
	defer c.Stop()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
