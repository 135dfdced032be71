package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestFetcher(relays []string) *Fetcher {
	return NewFetcher(Config{
		MaxAttempts:   3,
		Relays:        relays,
		DisableDelays: true,
	}, nil)
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request without User-Agent")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	f := newTestFetcher([]string{})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
	if res.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want application/json", res.ContentType)
	}
	if string(res.Body) != `{"ok":true}` {
		t.Errorf("Body = %q", res.Body)
	}
}

func TestFetchRetriesOnBlock(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "finally")
	}))
	defer srv.Close()

	f := newTestFetcher([]string{})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if string(res.Body) != "finally" {
		t.Errorf("Body = %q, want %q", res.Body, "finally")
	}
}

func TestFetchExhaustedReturnsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher([]string{})
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() error = nil, want upstream error")
	}
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("Fetch() error = %v, want *UpstreamError", err)
	}
	if upErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", upErr.StatusCode)
	}
}

func TestFetchFallsBackToRelay(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := r.URL.Query().Get("url")
		if wrapped != direct.URL {
			t.Errorf("relay got url %q, want %q", wrapped, direct.URL)
		}
		fmt.Fprint(w, "via relay")
	}))
	defer relay.Close()

	f := newTestFetcher([]string{relay.URL + "/raw?url=%s"})
	res, err := f.Fetch(context.Background(), direct.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(res.Body) != "via relay" {
		t.Errorf("Body = %q, want %q", res.Body, "via relay")
	}
}

func TestFetchViaScraperAPI(t *testing.T) {
	upstream := "https://api.sofascore.com/api/v1/event/1"

	var gotKey, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotURL = r.URL.Query().Get("url")
		fmt.Fprint(w, "proxied")
	}))
	defer srv.Close()

	f := NewFetcher(Config{ScraperAPIKey: "secret", DisableDelays: true}, nil)
	// Тестовый сервер вместо api.scraperapi.com.
	f.client.Transport = rewriteTransport{target: srv.URL}

	res, err := f.Fetch(context.Background(), upstream)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("api_key = %q, want %q", gotKey, "secret")
	}
	if gotURL != upstream {
		t.Errorf("url = %q, want %q", gotURL, upstream)
	}
	if string(res.Body) != "proxied" {
		t.Errorf("Body = %q, want %q", res.Body, "proxied")
	}
}

func TestFetchInvalidURL(t *testing.T) {
	f := newTestFetcher([]string{})
	for _, raw := range []string{"", "not a url", "/relative/path"} {
		if _, err := f.Fetch(context.Background(), raw); err == nil {
			t.Errorf("Fetch(%q) error = nil, want invalid url error", raw)
		}
	}
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher([]string{})
	if _, err := f.Fetch(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
}

// rewriteTransport перенаправляет любой запрос на тестовый сервер,
// сохраняя query-параметры исходного URL.
type rewriteTransport struct {
	target string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(t.target)
	if err != nil {
		return nil, err
	}
	u.RawQuery = req.URL.RawQuery
	clone := req.Clone(req.Context())
	clone.URL = u
	clone.Host = u.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func TestBrowserHeaders(t *testing.T) {
	target, _ := url.Parse("https://api.sofascore.com/api/v1/event/1")
	h := browserHeaders(target)

	if h.Get("User-Agent") == "" {
		t.Error("User-Agent is empty")
	}
	if got := h.Get("Origin"); got != "https://api.sofascore.com" {
		t.Errorf("Origin = %q", got)
	}
	if h.Get("Referer") == "" {
		t.Error("Referer is empty")
	}
	if h.Get("Accept-Language") == "" {
		t.Error("Accept-Language is empty")
	}
}

func TestUpstreamErrorMessageTruncated(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write(long)
	}))
	defer srv.Close()

	f := NewFetcher(Config{MaxAttempts: 1, Relays: []string{}, DisableDelays: true}, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if len(upErr.Message) > 200 {
		t.Errorf("Message length = %d, want <= 200", len(upErr.Message))
	}
}

func TestUpstreamErrorMessageKeepsValidUTF8(t *testing.T) {
	// Кириллица по два байта: граница в 200 байт попадает внутрь руны.
	long := strings.Repeat("Ы", 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, long)
	}))
	defer srv.Close()

	f := NewFetcher(Config{MaxAttempts: 1, Relays: []string{}, DisableDelays: true}, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if len(upErr.Message) > 200 {
		t.Errorf("Message length = %d, want <= 200", len(upErr.Message))
	}
	if !utf8.ValidString(upErr.Message) {
		t.Errorf("Message %q is not valid UTF-8", upErr.Message)
	}
}
