// Package fetch downloads distribution artifacts with retry, circuit breaking
// and DNS caching, and resolves pinned requirements to download URLs.
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	"go.trai.ch/zerr"
)

var (
	ErrNotFound     = zerr.New("artifact not found")
	ErrRateLimited  = zerr.New("rate limited by file host")
	ErrUpstreamDown = zerr.New("file host unavailable")
)

const dnsRefreshInterval = 5 * time.Minute

// Artifact is an open response body for a distribution file.
type Artifact struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
}

// FetcherInterface is implemented by Fetcher and CircuitBreakerFetcher.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) (*Artifact, error)
	Head(ctx context.Context, url string) (size int64, contentType string, err error)
}

// Fetcher downloads sdists and wheels from the index's file host.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the DNS-caching HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxRetries sets how many times a rate-limited or 5xx fetch is retried.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) { f.maxRetries = n }
}

// WithBaseDelay sets the first retry delay. Later delays grow exponentially.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.baseDelay = d }
}

// NewFetcher creates a Fetcher. Until Close is called a background goroutine
// refreshes its DNS cache.
func NewFetcher(opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   5 * time.Minute, // sdists can be large
			Transport: cachedTransport(resolver),
		},
		userAgent:  "distmeta/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	go f.refreshDNS(resolver)
	return f
}

func cachedTransport(resolver *dnscache.Resolver) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "dns lookup failed"), "host", host)
		}
		var lastErr error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		if lastErr == nil {
			lastErr = zerr.New("no addresses")
		}
		return nil, zerr.With(zerr.Wrap(lastErr, "failed to dial any resolved address"), "host", host)
	}

	return &http.Transport{
		DialContext:           dial,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

func (f *Fetcher) refreshDNS(resolver *dnscache.Resolver) {
	ticker := time.NewTicker(dnsRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			resolver.Refresh(true)
		case <-f.stop:
			return
		}
	}
}

// Close stops the DNS cache refresher. It is safe to call more than once.
func (f *Fetcher) Close() {
	f.stopOnce.Do(func() { close(f.stop) })
}

// Fetch opens the artifact at url, retrying rate limits and 5xx responses
// with jittered exponential backoff. The caller must close Artifact.Body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Artifact, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 0; ; attempt++ {
		artifact, err := f.get(ctx, url)
		if err == nil {
			return artifact, nil
		}
		transient := errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown)
		if !transient || attempt >= f.maxRetries {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.NextBackOff()):
		}
	}
}

func (f *Fetcher) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid artifact request"), "url", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	return req, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*Artifact, error) {
	req, err := f.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "fetching artifact"), "url", url)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, statusError(url, resp.StatusCode, string(body))
	}

	return &Artifact{
		Body:        resp.Body,
		Size:        contentLength(resp),
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
	}, nil
}

// statusError maps a non-200 status to one of the package sentinels, or a
// plain error carrying the response snippet.
func statusError(url string, status int, body string) error {
	var err error
	switch {
	case status == http.StatusNotFound:
		err = zerr.Wrap(ErrNotFound, "artifact request failed")
	case status == http.StatusTooManyRequests:
		err = zerr.Wrap(ErrRateLimited, "artifact request failed")
	case status >= 500:
		err = zerr.Wrap(ErrUpstreamDown, "artifact request failed")
	default:
		err = zerr.With(zerr.New("unexpected status"), "body", body)
	}
	return zerr.With(zerr.With(err, "url", url), "status", status)
}

// Head returns an artifact's size and content type without downloading it.
func (f *Fetcher) Head(ctx context.Context, url string) (size int64, contentType string, err error) {
	req, err := f.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return 0, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", zerr.With(zerr.Wrap(err, "head request"), "url", url)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", statusError(url, resp.StatusCode, "")
	}
	return contentLength(resp), resp.Header.Get("Content-Type"), nil
}

func contentLength(resp *http.Response) int64 {
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return n
		}
	}
	return -1
}
