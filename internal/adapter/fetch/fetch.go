// Package fetch retrieves conditions payloads over HTTP or from local files.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher returns the raw payload for one poll cycle.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// New picks a fetcher for rawURL: http and https URLs are fetched over the
// network, file:// URLs and bare paths are read from disk.
func New(rawURL string, opts HTTPOptions, logger *slog.Logger) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse conditions URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPFetcher(rawURL, opts, logger)
	case "file":
		return NewFileFetcher(filepath.FromSlash(u.Path)), nil
	case "":
		return NewFileFetcher(rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported conditions URL scheme %q", u.Scheme)
	}
}

// FileFetcher reads the payload from a local file on every cycle.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a FileFetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch reads the whole file.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	return data, nil
}
