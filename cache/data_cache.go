package cache

import "sync"

// DataCache is a region-partitioned key/value store. The cache lock guards
// the region table only; every region carries its own lock.
//
// Reads and writes that address a missing region create it. ClearRegion is
// the exception and leaves unknown regions alone.
type DataCache struct {
	mu      sync.Mutex
	regions map[string]*DataRegion
}

// NewDataCache returns an empty cache.
func NewDataCache() *DataCache {
	return &DataCache{
		regions: make(map[string]*DataRegion, 4),
	}
}

// Add stores value under key in region, replacing any existing value.
func (c *DataCache) Add(key string, value any, region string) {
	c.region(region).Add(key, value)
}

// Remove deletes key from region and reports whether it was present.
func (c *DataCache) Remove(key, region string) bool {
	return c.region(region).Remove(key)
}

// Get returns the value stored under key in region, or nil on a miss.
func (c *DataCache) Get(key, region string) any {
	return c.region(region).Get(key)
}

// Lookup is Get with a presence flag.
func (c *DataCache) Lookup(key, region string) (any, bool) {
	return c.region(region).Lookup(key)
}

// CreateRegion adds an empty region. It returns false when the region
// already exists.
func (c *DataCache) CreateRegion(name string) bool {
	name = regionName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.regions[name]; ok {
		return false
	}
	c.regions[name] = newDataRegion(name)
	return true
}

// ContainsRegion reports whether the region exists.
func (c *DataCache) ContainsRegion(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.regions[regionName(name)]
	return ok
}

// ClearRegion removes every key from an existing region.
func (c *DataCache) ClearRegion(name string) {
	c.mu.Lock()
	r, ok := c.regions[regionName(name)]
	c.mu.Unlock()

	if ok {
		r.Clear()
	}
}

// GetObjectsInRegion returns a snapshot of the region contents in insertion
// order. Later writes do not affect the returned slice.
func (c *DataCache) GetObjectsInRegion(region string) []Entry {
	return c.region(region).Objects()
}

// Region returns the named region, creating it when missing.
func (c *DataCache) Region(name string) *DataRegion {
	return c.region(name)
}

func (c *DataCache) region(name string) *DataRegion {
	name = regionName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.regions[name]
	if !ok {
		r = newDataRegion(name)
		c.regions[name] = r
	}
	return r
}

func regionName(name string) string {
	if name == "" {
		return DefaultRegion
	}
	return name
}

// Get returns the value under key typed as T. Misses and values of another
// type yield the zero T.
func Get[T any](c *DataCache, key, region string) T {
	v, _ := c.Get(key, region).(T)
	return v
}
