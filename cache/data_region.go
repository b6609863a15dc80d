package cache

import "sync"

// Entry is a single key/value pair returned from a region snapshot.
type Entry struct {
	Key   string
	Value any
}

// DataRegion is a named partition of a DataCache. Keys keep their insertion
// order so snapshots are stable between calls.
type DataRegion struct {
	name string

	mu    sync.Mutex
	index map[string]int
	items []Entry
}

func newDataRegion(name string) *DataRegion {
	return &DataRegion{
		name:  name,
		index: make(map[string]int, 8),
	}
}

// Name returns the region name.
func (r *DataRegion) Name() string {
	return r.name
}

// Add stores value under key, replacing any previous value in place.
func (r *DataRegion) Add(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[key]; ok {
		r.items[i].Value = value
		return
	}
	r.index[key] = len(r.items)
	r.items = append(r.items, Entry{Key: key, Value: value})
}

// Remove deletes key and reports whether it was present.
func (r *DataRegion) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	delete(r.index, key)
	for j := i; j < len(r.items); j++ {
		r.index[r.items[j].Key] = j
	}
	return true
}

// Get returns the value stored under key, or nil. An empty key always misses.
func (r *DataRegion) Get(key string) any {
	if key == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[key]; ok {
		return r.items[i].Value
	}
	return nil
}

// Lookup is Get with an explicit presence flag, for regions that store nil.
func (r *DataRegion) Lookup(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[key]; ok {
		return r.items[i].Value, true
	}
	return nil, false
}

// Objects returns a point-in-time copy of the region contents.
func (r *DataRegion) Objects() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of keys in the region.
func (r *DataRegion) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Clear removes every key.
func (r *DataRegion) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.index)
	r.items = r.items[:0]
}
