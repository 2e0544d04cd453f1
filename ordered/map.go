// Package ordered provides containers whose iteration order is a pure
// function of the operations applied to them, so simulation runs replay
// bit for bit.
package ordered

import "iter"

type entry[K comparable, V any] struct {
	key K
	val V
}

// Map is a hash map that iterates in insertion order. Erasing a key never
// reorders the survivors.
//
// The zero value is ready to use.
type Map[K comparable, V any] struct {
	index   map[K]int
	entries []entry[K, V]
}

// NewMap returns an empty map with room for n entries.
func NewMap[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		index:   make(map[K]int, n),
		entries: make([]entry[K, V], 0, n),
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.entries[i].val, true
}

// Set stores v under k. A new key is appended at the end of the order; an
// existing key keeps its position.
func (m *Map[K, V]) Set(k K, v V) {
	if i, ok := m.index[k]; ok {
		m.entries[i].val = v
		return
	}
	if m.index == nil {
		m.index = make(map[K]int)
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, entry[K, V]{key: k, val: v})
}

// GetOrInsert returns the value under k, inserting the result of mk first if
// k is absent. The boolean reports whether an insertion happened.
func (m *Map[K, V]) GetOrInsert(k K, mk func() V) (V, bool) {
	if i, ok := m.index[k]; ok {
		return m.entries[i].val, false
	}
	v := mk()
	m.Set(k, v)
	return v, true
}

// Delete removes k and reports whether it was present.
func (m *Map[K, V]) Delete(k K) bool {
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	copy(m.entries[i:], m.entries[i+1:])
	var zero entry[K, V]
	m.entries[len(m.entries)-1] = zero
	m.entries = m.entries[:len(m.entries)-1]
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].key] = j
	}
	return true
}

// DeleteFunc removes every entry for which del returns true, in one pass.
// It returns the number of removed entries.
func (m *Map[K, V]) DeleteFunc(del func(K, V) bool) int {
	w := 0
	for r := range m.entries {
		e := m.entries[r]
		if del(e.key, e.val) {
			delete(m.index, e.key)
			continue
		}
		m.entries[w] = e
		m.index[e.key] = w
		w++
	}
	removed := len(m.entries) - w
	clear(m.entries[w:])
	m.entries = m.entries[:w]
	return removed
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	clear(m.index)
	clear(m.entries)
	m.entries = m.entries[:0]
}

// At returns the i-th entry in iteration order.
func (m *Map[K, V]) At(i int) (K, V) {
	e := m.entries[i]
	return e.key, e.val
}

// All iterates over the entries in insertion order. The map must not be
// modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Keys iterates over the keys in insertion order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range m.entries {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Values iterates over the values in insertion order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range m.entries {
			if !yield(e.val) {
				return
			}
		}
	}
}
