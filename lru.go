// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

// LRU is a least-recently-used algorithm for Caches. It tracks the age of items in
// a Cache by access time, and when the cache size is greater than a configured value,
// reports which items in excess of the cache size are the least recently used.
type LRU struct {
	lookup map[string]*node
	head   *node
	tail   *node
	size   int
}

type node struct {
	next  *node
	prev  *node
	value string
}

// Create a new LRU managing a map, with a given size
func NewLRU(size int) LRU {
	return LRU{
		lookup: make(map[string]*node),
		head:   nil,
		tail:   nil,
		size:   size,
	}
}

// Updates access for an item, and returns any item that
// gets pushed off the end of the LRU
func (l *LRU) Touch(key string) string {
	if n, ok := l.lookup[key]; ok {
		if n == l.head {
			return ""
		}
		l.unlink(n)
		l.pushFront(n)
		return ""
	}

	n := &node{value: key}
	l.lookup[key] = n
	l.pushFront(n)

	if len(l.lookup) > l.size {
		remove := l.tail
		l.unlink(remove)
		delete(l.lookup, remove.value)
		return remove.value
	}
	return ""
}

// Len is the number of tracked keys.
func (l *LRU) Len() int {
	return len(l.lookup)
}

func (l *LRU) pushFront(n *node) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *LRU) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
