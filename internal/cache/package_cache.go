package cache

import (
	"sync"

	"github.com/abishek1718/package-locker/internal/metrics"
	"github.com/abishek1718/package-locker/internal/repository"
)

// PackageCache keeps pending package details in memory so the public
// pickup page does not hit postgres on every poll. Entries leave the
// cache as soon as the package stops being PENDING.
type PackageCache struct {
	mu    sync.RWMutex
	cache map[string]*repository.PackageDetail
}

func NewPackageCache() *PackageCache {
	return &PackageCache{
		cache: make(map[string]*repository.PackageDetail),
	}
}

// Load seeds the cache from already-fetched rows at startup.
func (c *PackageCache) Load(details []*repository.PackageDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range details {
		if d.Status != repository.PackagePending {
			continue
		}
		detailCopy := *d
		c.cache[d.ID] = &detailCopy
	}
	metrics.PackageCacheItems.Set(float64(len(c.cache)))
}

func (c *PackageCache) Get(id string) (*repository.PackageDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, found := c.cache[id]
	if !found {
		return nil, false
	}
	detailCopy := *d
	return &detailCopy, true
}

func (c *PackageCache) Set(d *repository.PackageDetail) {
	if d.Status != repository.PackagePending {
		c.Delete(d.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	detailCopy := *d
	c.cache[d.ID] = &detailCopy
	metrics.PackageCacheItems.Set(float64(len(c.cache)))
}

func (c *PackageCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[id]; found {
		delete(c.cache, id)
		metrics.PackageCacheItems.Set(float64(len(c.cache)))
	}
}
