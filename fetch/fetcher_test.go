package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFetcher(t *testing.T, opts ...Option) *Fetcher {
	t.Helper()
	f := NewFetcher(append([]Option{WithBaseDelay(5 * time.Millisecond)}, opts...)...)
	t.Cleanup(f.Close)
	return f
}

func TestFetchSuccess(t *testing.T) {
	content := "sdist bytes for box2d"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		w.Header().Set("ETag", `"abc123"`)
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	artifact, err := newTestFetcher(t).Fetch(context.Background(), server.URL+"/box2d-py-2.3.5.tar.gz")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()

	if artifact.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", artifact.Size, len(content))
	}
	if artifact.ContentType != "application/gzip" {
		t.Errorf("ContentType = %q", artifact.ContentType)
	}
	if artifact.ETag != `"abc123"` {
		t.Errorf("ETag = %q", artifact.ETag)
	}

	body, err := io.ReadAll(artifact.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(body) != content {
		t.Errorf("body = %q, want %q", body, content)
	}
}

func TestFetchRetries(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		failuresLeft int32
		maxRetries   int
		wantAttempts int32
		wantErr      error
	}{
		{"rate limit then success", http.StatusTooManyRequests, 2, 3, 3, nil},
		{"server error then success", http.StatusServiceUnavailable, 1, 3, 2, nil},
		{"server error exhausts retries", http.StatusServiceUnavailable, 100, 2, 3, ErrUpstreamDown},
		{"not found is not retried", http.StatusNotFound, 100, 3, 1, ErrNotFound},
		{"client error is not retried", http.StatusForbidden, 100, 3, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&attempts, 1) <= tt.failuresLeft {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte("ok"))
			}))
			defer server.Close()

			artifact, err := newTestFetcher(t, WithMaxRetries(tt.maxRetries)).Fetch(context.Background(), server.URL+"/f.tar.gz")
			if artifact != nil {
				_ = artifact.Body.Close()
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && tt.failuresLeft < 100 && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.status == http.StatusForbidden && err == nil {
				t.Error("expected error for 403")
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestFetchContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := newTestFetcher(t).Fetch(ctx, server.URL+"/f.tar.gz"); err == nil {
		t.Error("expected error on context cancellation")
	}
}

func TestFetchUnknownSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Transfer-Encoding", "chunked")
		_, _ = w.Write([]byte("chunk1"))
	}))
	defer server.Close()

	artifact, err := newTestFetcher(t).Fetch(context.Background(), server.URL+"/f.tar.gz")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = artifact.Body.Close() }()

	if artifact.Size != -1 {
		t.Errorf("Size = %d, want -1 for unknown", artifact.Size)
	}
}

func TestHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/missing.tar.gz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", "12345")
	}))
	defer server.Close()

	f := newTestFetcher(t)
	size, contentType, err := f.Head(context.Background(), server.URL+"/f.tar.gz")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if size != 12345 {
		t.Errorf("size = %d, want 12345", size)
	}
	if contentType != "application/octet-stream" {
		t.Errorf("contentType = %q", contentType)
	}

	if _, _, err := f.Head(context.Background(), server.URL+"/missing.tar.gz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head = %v, want ErrNotFound", err)
	}
}

func TestFetchUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	artifact, _ := newTestFetcher(t).Fetch(context.Background(), server.URL+"/f.tar.gz")
	if artifact != nil {
		_ = artifact.Body.Close()
	}
	if receivedUA != "distmeta/1.0" {
		t.Errorf("default User-Agent = %q", receivedUA)
	}

	artifact, _ = newTestFetcher(t, WithUserAgent("custom-agent/2.0")).Fetch(context.Background(), server.URL+"/f.tar.gz")
	if artifact != nil {
		_ = artifact.Body.Close()
	}
	if receivedUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want custom-agent/2.0", receivedUA)
	}
}

func TestFetcherCloseIdempotent(t *testing.T) {
	f := NewFetcher()
	f.Close()
	f.Close()
}
