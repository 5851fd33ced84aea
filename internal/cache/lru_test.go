package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tally/internal/log"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *clock) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", 3)
	clk.t = clk.t.Add(45 * time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.CleanExpired(), "a was removed on read")

	clk.t = clk.t.Add(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCacheStatsAndPurge(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	c.Delete("a")
	_, _ = c.Get("a")

	assert.Equal(t, Stats{Size: 0, Hits: 1, Misses: 2}, c.Stats())

	c.Set("x", 1)
	c.Set("y", 2)
	c.Purge()
	assert.Zero(t, c.Size())
	_, ok := c.Get("x")
	assert.False(t, ok)
}

func TestViewKey(t *testing.T) {
	assert.Equal(t, "stats@7|month|balance", ViewKey(7, "stats", "month", "balance"))
	assert.NotEqual(t, ViewKey(7, "stats", "month"), ViewKey(8, "stats", "month"))
	assert.Equal(t, "radar@0", ViewKey(0, "radar"))
}

func TestManagerCleanAll(t *testing.T) {
	logger := log.New(log.Config{Component: "test", Handler: slog.NewTextHandler(io.Discard, nil)})
	m := NewManager(logger)

	a, clk := newTestCache(10, time.Second)
	a.Set("k", 1)
	m.Register(a)
	clk.t = clk.t.Add(2 * time.Second)

	assert.Equal(t, 1, m.CleanAll())
	m.Stop()
	m.Stop()
}
