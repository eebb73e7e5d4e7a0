package frontier

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Visited tracks dequeued URLs using a Bloom filter with an exact-match
// backstop for false positives.
type Visited struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
	count  int
}

// NewVisited creates a visited set sized for the estimated URL count.
func NewVisited(estimatedItems int) *Visited {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}

	return &Visited{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add marks a URL as visited. Returns false if it was already present.
func (v *Visited) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.exact[url]; exists {
		return false
	}
	v.filter.AddString(url)
	v.exact[url] = struct{}{}
	v.count++
	return true
}

// Has checks whether a URL has been visited.
func (v *Visited) Has(url string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	// Fast negative check; an exact lookup settles potential false positives.
	if !v.filter.TestString(url) {
		return false
	}
	_, exists := v.exact[url]
	return exists
}

// Count returns the number of visited URLs.
func (v *Visited) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.count
}
