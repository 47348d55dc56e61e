package ofac

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFeedURL is the published consolidated SDN feed.
const DefaultFeedURL = "https://www.treasury.gov/ofac/downloads/sanctions/1.0/sdn_advanced.xml"

const fetchTimeout = 120 * time.Second

// Fetcher downloads the SDN XML feed.
type Fetcher struct {
	url   string
	httpc *http.Client
}

// NewFetcher creates a fetcher for the given feed URL; an empty URL uses
// the published default.
func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = DefaultFeedURL
	}
	return &Fetcher{
		url:   url,
		httpc: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads the full feed body. The feed is large (hundreds of MB of
// XML), so callers should hold at most one copy.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stablepay-ofac/1.0)")

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sdn feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sdn feed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
