package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"scryfall/internal/logging"
	"scryfall/internal/record"
)

var logger = logging.Logger("transport")

// ── HTTP ───────────────────────────────────────────────────
// Fetches API records over HTTP. Any body that is a JSON object is
// returned as a record, whatever the status code: the API answers
// failures with an "error" object and callers decode it like any other.

const maxSnippet = 256

// HTTPFetcher implements object.Fetcher over net/http. It is safe for
// concurrent use.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string

	// MinInterval spaces out request starts. The API asks clients to
	// stay under roughly ten requests per second.
	MinInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:      &http.Client{Timeout: timeout},
		UserAgent:   userAgent,
		MinInterval: 100 * time.Millisecond,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (record.Record, error) {
	if err := f.wait(ctx); err != nil {
		return record.Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return record.Record{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return record.Record{}, fmt.Errorf("read body: %w", err)
	}
	logger.Debug("fetched", "url", locator, "status", resp.StatusCode, "bytes", len(data), "took", time.Since(start))

	rec, perr := record.Parse(data)
	if perr == nil {
		return rec, nil
	}
	if resp.StatusCode >= 400 {
		return record.Record{}, fmt.Errorf("http %d: %s", resp.StatusCode, snippet(data))
	}
	return record.Record{}, fmt.Errorf("parse json: %w", perr)
}

// wait blocks until MinInterval has passed since the previous request.
func (f *HTTPFetcher) wait(ctx context.Context) error {
	if f.MinInterval <= 0 {
		return nil
	}
	f.mu.Lock()
	next := f.last.Add(f.MinInterval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	f.last = next
	f.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}
