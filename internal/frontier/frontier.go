// Package frontier provides the discovery queue and visited-set tracking
// for a crawl session.
package frontier

import (
	"sync"
	"time"
)

// Discovery is a queued URL together with its discovery provenance.
type Discovery struct {
	URL       string
	From      string // URL of the discovering page, or "initial" for the seed
	LinkText  string
	Method    string // initial, html_link, meta_tag, redirect
	Depth     int
	Timestamp time.Time
}

// Frontier is a strict-FIFO queue of discoveries. FIFO dequeue order is what
// makes the traversal breadth-first; do not substitute another discipline.
// Enqueue-time deduplication is by exact URL against the current queue
// contents only: once an item is popped its URL may be enqueued again by a
// later discovery, and the dequeue-time visited check handles it.
type Frontier struct {
	mu     sync.Mutex
	items  []*Discovery
	urlSet map[string]struct{}
}

// New creates an empty frontier.
func New() *Frontier {
	return &Frontier{
		urlSet: make(map[string]struct{}),
	}
}

// Push appends a discovery to the tail. Returns false if the URL is already
// queued (the discovery is silently dropped, first discovery wins).
func (f *Frontier) Push(d *Discovery) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.urlSet[d.URL]; exists {
		return false
	}
	f.urlSet[d.URL] = struct{}{}
	f.items = append(f.items, d)
	return true
}

// Pop removes and returns the head of the queue.
func (f *Frontier) Pop() (*Discovery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return nil, false
	}
	d := f.items[0]
	f.items[0] = nil
	f.items = f.items[1:]
	delete(f.urlSet, d.URL)
	return d, true
}

// Contains checks whether a URL is currently queued.
func (f *Frontier) Contains(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.urlSet[url]
	return exists
}

// Len returns the number of queued discoveries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
