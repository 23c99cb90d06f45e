// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

// LRU is a least-recently-used cache for maps that maintains a maximum map size.
// To use it, call Push() every time you add something to the map. Once more than
// size distinct keys were pushed, the oldest ones are removed from the map.
type LRU[T any] struct {
	idx        int
	ring       []string
	managedMap map[string]T
}

// Create a new LRU managing a map, with a given size
func NewLRU[T any](m map[string]T, size int) LRU[T] {
	return LRU[T]{
		idx:        -1,
		ring:       make([]string, size),
		managedMap: m,
	}
}

// Push a key onto the front of the ring. The key that falls off the end is
// deleted from the managed map, unless it was pushed again in the meantime.
func (l *LRU[T]) Push(key string) {
	if len(l.ring) == 0 {
		return
	}
	l.idx = (l.idx + 1) % len(l.ring)

	evicted := l.ring[l.idx]
	l.ring[l.idx] = key
	if evicted == "" || evicted == key || l.contains(evicted) {
		return
	}
	delete(l.managedMap, evicted)
}

func (l *LRU[T]) contains(key string) bool {
	for _, k := range l.ring {
		if k == key {
			return true
		}
	}
	return false
}
