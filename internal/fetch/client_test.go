package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kaanbobac/digital-tester-twin/internal/errors"
	"github.com/kaanbobac/digital-tester-twin/internal/metrics"
)

// =============================================================================
// Client Tests
// =============================================================================

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "SiteAuditor") {
			t.Errorf("User-Agent = %q, want SiteAuditor identity", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Error("Accept-Language header missing")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>Home</title></head><body>hello</body></html>"))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig())
	defer client.Close()

	result, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if !result.IsHTML() {
		t.Errorf("IsHTML() = false for content type %q", result.ContentType)
	}
	if !strings.Contains(result.Body, "<title>Home</title>") {
		t.Errorf("Body missing expected content: %q", result.Body)
	}
	if result.Duration <= 0 {
		t.Error("Duration not recorded")
	}
}

func TestClient_Get_NonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig())
	defer client.Close()

	result, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// The client does not filter by content type; it only retrieves.
	if result.IsHTML() {
		t.Error("IsHTML() = true for JSON response")
	}
	if result.Body != `{"ok":true}` {
		t.Errorf("Body = %q", result.Body)
	}
}

func TestClient_Get_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html><body><h1>404</h1></body></html>"))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig())
	defer client.Close()

	// An error status is not a transport failure; the caller gets the body.
	result, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", result.StatusCode)
	}
}

func TestClient_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	client := NewClient(Config{Timeout: 50 * time.Millisecond})
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Get() expected timeout error")
	}
	if errors.GetErrorType(err) != errors.Timeout {
		t.Errorf("error type = %v, want Timeout", errors.GetErrorType(err))
	}
}

func TestClient_Get_ConnectionRefused(t *testing.T) {
	client := NewClient(DefaultConfig())
	defer client.Close()

	// Reserved port with nothing listening.
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/")
	if err == nil {
		t.Fatal("Get() expected network error")
	}
	if got := errors.GetErrorType(err); got != errors.Network {
		t.Errorf("error type = %v, want Network", got)
	}
}

func TestClient_Get_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	collector := metrics.New()
	cfg := DefaultConfig()
	cfg.Metrics = collector
	client := NewClient(cfg)
	defer client.Close()

	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	stats := collector.Snapshot()
	if stats.RequestsTotal != 1 {
		t.Errorf("RequestsTotal = %d, want 1", stats.RequestsTotal)
	}
	if stats.StatusCodes[200] != 1 {
		t.Errorf("StatusCodes[200] = %d, want 1", stats.StatusCodes[200])
	}
}

func TestClient_Get_BodyLimit(t *testing.T) {
	big := strings.Repeat("a", maxBodySize+1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(big))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig())
	defer client.Close()

	result, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(result.Body) != maxBodySize {
		t.Errorf("Body length = %d, want cap %d", len(result.Body), maxBodySize)
	}
}
