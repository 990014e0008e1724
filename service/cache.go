package service

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"movie-finder-cli/model"
)

type detailCache interface {
	Get(id int) (*model.MovieDetail, bool)
	Add(id int, detail *model.MovieDetail)
	Len() int
}

// sessionCache never evicts; it lives as long as the aggregator.
type sessionCache struct {
	mu      sync.RWMutex
	entries map[int]*model.MovieDetail
}

func newSessionCache() *sessionCache {
	return &sessionCache{entries: make(map[int]*model.MovieDetail)}
}

func (c *sessionCache) Get(id int) (*model.MovieDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[id]
	return d, ok
}

func (c *sessionCache) Add(id int, detail *model.MovieDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = detail
}

func (c *sessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type boundedCache struct {
	inner *lru.Cache[int, *model.MovieDetail]
}

func newBoundedCache(size int) (*boundedCache, error) {
	inner, err := lru.New[int, *model.MovieDetail](size)
	if err != nil {
		return nil, err
	}
	return &boundedCache{inner: inner}, nil
}

func (c *boundedCache) Get(id int) (*model.MovieDetail, bool) { return c.inner.Get(id) }

func (c *boundedCache) Add(id int, detail *model.MovieDetail) { c.inner.Add(id, detail) }

func (c *boundedCache) Len() int { return c.inner.Len() }
