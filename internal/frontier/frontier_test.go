package frontier

import (
	"fmt"
	"testing"
	"time"
)

// =============================================================================
// Frontier Tests
// =============================================================================

func TestFrontier_FIFOOrder(t *testing.T) {
	f := New()

	urls := []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}
	for i, u := range urls {
		ok := f.Push(&Discovery{URL: u, Depth: i, Timestamp: time.Now()})
		if !ok {
			t.Fatalf("Push(%q) = false, want true", u)
		}
	}

	for _, want := range urls {
		d, ok := f.Pop()
		if !ok {
			t.Fatalf("Pop() empty, want %q", want)
		}
		if d.URL != want {
			t.Errorf("Pop() = %q, want %q (FIFO order broken)", d.URL, want)
		}
	}

	if _, ok := f.Pop(); ok {
		t.Error("Pop() on empty frontier should return false")
	}
}

func TestFrontier_DedupAtEnqueue(t *testing.T) {
	f := New()

	first := &Discovery{URL: "https://example.com/page", From: "initial", LinkText: "first"}
	second := &Discovery{URL: "https://example.com/page", From: "https://example.com/", LinkText: "second"}

	if !f.Push(first) {
		t.Fatal("first Push should succeed")
	}
	if f.Push(second) {
		t.Error("duplicate Push should be dropped (first discovery wins)")
	}
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}

	d, _ := f.Pop()
	if d.LinkText != "first" {
		t.Errorf("kept discovery = %q, want the first one", d.LinkText)
	}
}

func TestFrontier_ReEnqueueAfterPop(t *testing.T) {
	f := New()

	f.Push(&Discovery{URL: "https://example.com/page"})
	f.Pop()

	// Dedup is against the current frontier only; a popped URL may be
	// enqueued again by a later discovery path.
	if !f.Push(&Discovery{URL: "https://example.com/page"}) {
		t.Error("Push after Pop should succeed")
	}
}

func TestFrontier_Contains(t *testing.T) {
	f := New()
	f.Push(&Discovery{URL: "https://example.com/a"})

	if !f.Contains("https://example.com/a") {
		t.Error("Contains should report queued URL")
	}
	if f.Contains("https://example.com/b") {
		t.Error("Contains should not report unqueued URL")
	}

	f.Pop()
	if f.Contains("https://example.com/a") {
		t.Error("Contains should not report popped URL")
	}
}

// =============================================================================
// Visited Tests
// =============================================================================

func TestVisited_AddAndHas(t *testing.T) {
	v := NewVisited(100)

	if v.Has("https://example.com/") {
		t.Error("Has() = true on empty set")
	}
	if !v.Add("https://example.com/") {
		t.Error("first Add should return true")
	}
	if v.Add("https://example.com/") {
		t.Error("second Add should return false")
	}
	if !v.Has("https://example.com/") {
		t.Error("Has() = false after Add")
	}
	if v.Count() != 1 {
		t.Errorf("Count() = %d, want 1", v.Count())
	}
}

func TestVisited_ManyURLs(t *testing.T) {
	v := NewVisited(1000)

	for i := 0; i < 500; i++ {
		v.Add(fmt.Sprintf("https://example.com/page/%d", i))
	}
	if v.Count() != 500 {
		t.Errorf("Count() = %d, want 500", v.Count())
	}
	for i := 0; i < 500; i++ {
		if !v.Has(fmt.Sprintf("https://example.com/page/%d", i)) {
			t.Fatalf("Has() = false for added URL %d", i)
		}
	}
}
