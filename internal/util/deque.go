// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

// Deque is a double-ended queue backed by a growable ring.
// The zero value is an empty deque ready to use. Not safe for concurrent use.
type Deque[T any] struct {
	buf  []T
	head int
	n    int
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int {
	return d.n
}

// PushBack appends v at the back.
func (d *Deque[T]) PushBack(v T) {
	d.grow()
	d.buf[(d.head+d.n)%len(d.buf)] = v
	d.n++
}

// PopFront removes and returns the front element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) % len(d.buf)
	d.n--
	return v, true
}

// Each calls fn for every element from front to back.
func (d *Deque[T]) Each(fn func(int, T)) {
	for i := 0; i < d.n; i++ {
		fn(i, d.buf[(d.head+i)%len(d.buf)])
	}
}

// Clear removes all elements and releases references held by the ring.
func (d *Deque[T]) Clear() {
	var zero T
	for i := range d.buf {
		d.buf[i] = zero
	}
	d.head = 0
	d.n = 0
}

func (d *Deque[T]) grow() {
	if d.n < len(d.buf) {
		return
	}
	size := len(d.buf) * 2
	if size == 0 {
		size = 8
	}
	next := make([]T, size)
	for i := 0; i < d.n; i++ {
		next[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = next
	d.head = 0
}
