package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastClient(opts ...Option) *Client {
	return NewClient(append([]Option{WithRetryDelay(time.Millisecond, 5*time.Millisecond)}, opts...)...)
}

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, _ = DefaultClient().GetBody(context.Background(), server.URL)

	if gotUA != "distmeta" {
		t.Errorf("default User-Agent = %q, want %q", gotUA, "distmeta")
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	base := DefaultClient()
	_, _ = base.WithUserAgent("custom-agent/2.0").Head(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
	if base.userAgent != "distmeta" {
		t.Errorf("WithUserAgent mutated the receiver: %q", base.userAgent)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"gym"}`))
	}))
	defer server.Close()

	var got struct {
		Name string `json:"name"`
	}
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Name != "gym" {
		t.Errorf("name = %q, want gym", got.Name)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := fastClient().GetBody(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestNoRetryOnNotFound(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fastClient().GetBody(context.Background(), server.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.IsNotFound() {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := fastClient(WithMaxRetries(2)).GetBody(context.Background(), server.URL)
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rl.RetryAfter != 7 {
		t.Errorf("RetryAfter = %d, want 7", rl.RetryAfter)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestNotFoundErrorUnwrap(t *testing.T) {
	err := &NotFoundError{Index: "pypi", Name: "gym", Version: "0.1"}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
	if err.Error() != "pypi: project gym version 0.1 not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

type stubURLs struct{}

func (stubURLs) Registry(name, _ string) string { return "https://pypi.org/project/" + name + "/" }
func (stubURLs) Download(_, _ string) string { return "" }
func (stubURLs) Documentation(_, _ string) string { return "" }
func (stubURLs) PURL(name, version string) string { return "pkg:pypi/" + name + "@" + version }

func TestLinks(t *testing.T) {
	got := Links(stubURLs{}, "gym", "0.26.2")
	want := []Link{
		{Kind: "registry", URL: "https://pypi.org/project/gym/"},
		{Kind: "purl", URL: "pkg:pypi/gym@0.26.2"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d links, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
