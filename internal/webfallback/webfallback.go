// Package webfallback fetches product pages used as supplementary context for
// summaries when reviews alone are thin.
package webfallback

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jaytaylor/html2text"
	"go.uber.org/zap"
)

// Fetcher downloads a product page and reduces it to plain text. Results are
// memoized per URL for the lifetime of the process.
type Fetcher struct {
	client *http.Client
	logger *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]string
}

func NewFetcher(logger *zap.SugaredLogger) *Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = 8 * time.Second

	return &Fetcher{
		client: client.StandardClient(),
		logger: logger,
		cache:  make(map[string]string),
	}
}

// Content returns the text content of the product page at url, fetching it on
// first use.
func (f *Fetcher) Content(url string) (string, error) {
	f.mu.Lock()
	cached, ok := f.cache[url]
	f.mu.Unlock()
	if ok {
		f.logger.Debugw("website cache hit", "url", url)
		return cached, nil
	}

	resp, err := f.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %v: %v", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	text, err := html2text.FromString(string(body), html2text.Options{TextOnly: true})
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.cache[url] = text
	f.mu.Unlock()

	f.logger.Infow("cached website content", "url", url, "chars", len(text))

	return text, nil
}
