package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

// MultiFetcher routes a locator to a fetcher by URL scheme. Locators
// without a scheme go to the "" entry, if any.
type MultiFetcher map[string]object.Fetcher

// NewDefault serves http(s) from the network and file:// and bare paths
// from disk.
func NewDefault(web *HTTPFetcher, files FileFetcher) MultiFetcher {
	return MultiFetcher{
		"http":  web,
		"https": web,
		"file":  files,
		"":      files,
	}
}

func (m MultiFetcher) Fetch(ctx context.Context, locator string) (record.Record, error) {
	scheme := ""
	if u, err := url.Parse(locator); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}
	// Windows drive letters parse as one-letter schemes.
	if len(scheme) == 1 {
		scheme = ""
	}
	f, ok := m[scheme]
	if !ok {
		return record.Record{}, fmt.Errorf("no fetcher for scheme %q", scheme)
	}
	return f.Fetch(ctx, locator)
}
