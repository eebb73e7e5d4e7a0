package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.RecordRequest()
	c.RecordRequest()
	c.RecordPageCrawled()
	c.RecordPageDiscovered()
	c.RecordPageDiscovered()
	c.RecordPageDiscovered()
	c.RecordIssues(4)
	c.RecordError("timeout")
	c.RecordError("timeout")
	c.RecordError("network_error")
	c.RecordStatusCode(200)
	c.RecordStatusCode(200)
	c.RecordStatusCode(404)
	c.RecordResponseTime(100 * time.Millisecond)
	c.RecordResponseTime(300 * time.Millisecond)

	s := c.Snapshot()

	if s.RequestsTotal != 2 {
		t.Errorf("RequestsTotal = %d, want 2", s.RequestsTotal)
	}
	if s.PagesCrawled != 1 {
		t.Errorf("PagesCrawled = %d, want 1", s.PagesCrawled)
	}
	if s.PagesDiscovered != 3 {
		t.Errorf("PagesDiscovered = %d, want 3", s.PagesDiscovered)
	}
	if s.IssuesFound != 4 {
		t.Errorf("IssuesFound = %d, want 4", s.IssuesFound)
	}
	if s.ErrorsTotal != 3 {
		t.Errorf("ErrorsTotal = %d, want 3", s.ErrorsTotal)
	}
	if s.ErrorCounts["timeout"] != 2 {
		t.Errorf("ErrorCounts[timeout] = %d, want 2", s.ErrorCounts["timeout"])
	}
	if s.StatusCodes[200] != 2 || s.StatusCodes[404] != 1 {
		t.Errorf("StatusCodes = %v", s.StatusCodes)
	}
	if s.AvgResponseMs != 200 {
		t.Errorf("AvgResponseMs = %d, want 200", s.AvgResponseMs)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordRequest()
				c.RecordStatusCode(200)
				c.RecordError("network_error")
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.RequestsTotal != 1000 {
		t.Errorf("RequestsTotal = %d, want 1000", s.RequestsTotal)
	}
	if s.StatusCodes[200] != 1000 {
		t.Errorf("StatusCodes[200] = %d, want 1000", s.StatusCodes[200])
	}
	if s.ErrorCounts["network_error"] != 1000 {
		t.Errorf("ErrorCounts = %v", s.ErrorCounts)
	}
}
