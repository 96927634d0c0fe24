package hooks

import "sync"

// Identified is implemented by every row type held in a mirror.
type Identified interface {
	GetID() string
}

// Mirror is an in-memory copy of fetched rows. Each change bumps Version so
// derived views can be memoized on it.
type Mirror[T Identified] struct {
	mu      sync.RWMutex
	rows    []T
	version uint64
}

// Rows returns a copy of the mirrored rows in mirror order.
func (m *Mirror[T]) Rows() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return out
}

// Len returns the number of mirrored rows.
func (m *Mirror[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Version identifies the current contents of the mirror.
func (m *Mirror[T]) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Get returns the row with the given id.
func (m *Mirror[T]) Get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.GetID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Replace swaps the whole mirror for rows.
func (m *Mirror[T]) Replace(rows []T) {
	cp := make([]T, len(rows))
	copy(cp, rows)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = cp
	m.version++
}

// Prepend places row at the front.
func (m *Mirror[T]) Prepend(row T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]T, 0, len(m.rows)+1)
	rows = append(rows, row)
	m.rows = append(rows, m.rows...)
	m.version++
}

// Patch replaces the entry sharing row's id. It reports whether one was found.
func (m *Mirror[T]) Patch(row T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.GetID() == row.GetID() {
			rows := make([]T, len(m.rows))
			copy(rows, m.rows)
			rows[i] = row
			m.rows = rows
			m.version++
			return true
		}
	}
	return false
}

// Remove drops the entry with the given id. It reports whether one was found.
func (m *Mirror[T]) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]T, 0, len(m.rows))
	for _, r := range m.rows {
		if r.GetID() != id {
			rows = append(rows, r)
		}
	}
	if len(rows) == len(m.rows) {
		return false
	}
	m.rows = rows
	m.version++
	return true
}

// Reset empties the mirror.
func (m *Mirror[T]) Reset() {
	m.Replace(nil)
}

// memo caches one derived value keyed on mirror versions.
type memo[K comparable, V any] struct {
	mu    sync.Mutex
	valid bool
	key   K
	val   V
}

func (c *memo[K, V]) get(key K, compute func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.key == key {
		return c.val
	}
	c.val = compute()
	c.key = key
	c.valid = true
	return c.val
}
