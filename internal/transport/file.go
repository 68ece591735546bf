package transport

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"scryfall/internal/record"
)

// FileFetcher reads records from local JSON files. Locators are file://
// URLs or plain paths; relative paths resolve against Root.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, locator string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	path, err := f.resolve(locator)
	if err != nil {
		return record.Record{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return record.Record{}, fmt.Errorf("read fixture: %w", err)
	}
	rec, err := record.Parse(data)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func (f FileFetcher) resolve(locator string) (string, error) {
	path := locator
	if strings.HasPrefix(locator, "file:") {
		u, err := url.Parse(locator)
		if err != nil {
			return "", fmt.Errorf("parse locator: %w", err)
		}
		path = u.Path
		if path == "" {
			path = u.Opaque
		}
	}
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	return filepath.Clean(path), nil
}
