package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"novelweaver/bridge"
	"novelweaver/logutils"
)

// ErrExtensionRequired is surfaced when neither the helper extension nor a
// direct fetch could retrieve the page.
var ErrExtensionRequired = errors.New("Error: Could not fetch URL. Please ensure the NovelWeaver Extension is installed to bypass CORS restrictions.")

// Crawler fetches raw HTML, preferring the helper extension bridge and
// falling back to a direct fetch.
type Crawler struct {
	hub *bridge.Hub
}

func New(hub *bridge.Hub) *Crawler {
	return &Crawler{hub: hub}
}

// FetchHTML tries the bridge first, then fetches directly. The direct fetch
// is expected to fail for many novel sites, at which point the caller gets
// the install-the-extension guidance.
func (c *Crawler) FetchHTML(ctx context.Context, url string) (string, error) {
	if c.hub != nil && c.hub.Connected() > 0 {
		html, err := c.hub.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		logutils.Log.WithError(err).WithField("url", url).Warn("bridge fetch failed, falling back to direct fetch")
	}

	html, err := c.fetchDirect(url)
	if err != nil {
		logutils.Log.WithError(err).WithField("url", url).Warn("direct fetch failed")
		return "", ErrExtensionRequired
	}
	return html, nil
}

func (c *Crawler) fetchDirect(url string) (string, error) {
	collector := newCollector()

	var body []byte
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := collector.Visit(url); err != nil {
		return "", fmt.Errorf("visiting %s: %w", url, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty response from %s", url)
	}
	return string(body), nil
}

func newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(RandomUserAgent()),
	)

	collector.SetRequestTimeout(30 * time.Second)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 4,
		RandomDelay: 1 * time.Second,
	})

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	collector.WithTransport(transport)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	return collector
}

func RandomUserAgent() string {
	userAgents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.2 Safari/605.1.15",
		"Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Linux; Android 13; SM-S901B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Linux; Android 13; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Linux; Android 12; Redmi Note 9 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
	}
	return userAgents[rand.Intn(len(userAgents))]
}
