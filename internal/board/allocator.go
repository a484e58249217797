package board

import "sync"

// IDAllocator hands out monotonically increasing post IDs.
type IDAllocator struct {
	mu   sync.Mutex
	next int64
}

// NewIDAllocator creates an allocator whose first ID is start. A start below
// 1 is raised to 1.
func NewIDAllocator(start int64) *IDAllocator {
	if start < 1 {
		start = 1
	}
	return &IDAllocator{next: start}
}

// Next returns the next ID.
func (a *IDAllocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Peek returns the ID the next call to Next will return.
func (a *IDAllocator) Peek() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
