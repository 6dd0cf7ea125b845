package base

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	log "github.com/sirupsen/logrus"
)

// PageLoader loads storefront pages, falling back to browser rendering when a
// plain request is blocked or returns an empty shell.
type PageLoader struct {
	Client     *http.Client
	UserAgent  string
	UseBrowser bool
}

// NewHTTPClient returns the client shared by page loads and JSON endpoint
// calls.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ForceAttemptHTTP2:     false,
			TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewPageLoader creates a PageLoader configured from the environment.
func NewPageLoader(client *http.Client) *PageLoader {
	if client == nil {
		client = NewHTTPClient()
	}
	return &PageLoader{
		Client:     client,
		UserAgent:  config.UserAgent,
		UseBrowser: config.BrowserFallback,
	}
}

// Load fetches rawURL and returns it as a Page.
func (l *PageLoader) Load(ctx context.Context, rawURL string) (*Page, error) {
	doc, err := l.FetchDocument(ctx, rawURL, isValidDocument)
	if err != nil {
		return nil, err
	}
	return NewPage(rawURL, doc)
}

// FetchDocument fetches the URL using multiple strategies with a custom validator
func (l *PageLoader) FetchDocument(ctx context.Context, url string, validator func(*goquery.Document) bool) (*goquery.Document, error) {
	logger := log.WithField("url", url)

	// Strategy 1: HTTP Client (Fastest)
	doc, err := l.FetchDocumentHTTP(ctx, url)
	if err == nil && validator(doc) {
		logger.Debug("Page loaded over HTTP")
		return doc, nil
	}
	if err != nil {
		logger.WithError(err).Warn("HTTP page load failed")
	} else {
		logger.Warn("HTTP page load yielded invalid content")
	}

	if !l.UseBrowser {
		if err != nil {
			return nil, fmt.Errorf("load page %s: %w", url, err)
		}
		// Best effort: without a browser the raw document is all there is.
		return doc, nil
	}

	// Strategy 2: ChromeDP (Headless)
	logger.Info("Trying ChromeDP")
	doc, err = l.FetchDocumentChromeDP(ctx, url)
	if err == nil && validator(doc) {
		logger.Info("ChromeDP page load succeeded")
		return doc, nil
	}
	if err != nil {
		logger.WithError(err).Warn("ChromeDP page load failed")
	}

	// Strategy 3: Selenium (Full Browser)
	logger.Info("Trying Selenium")
	doc, err = l.FetchDocumentSelenium(ctx, url)
	if err == nil && validator(doc) {
		logger.Info("Selenium page load succeeded")
		return doc, nil
	}
	if err != nil {
		logger.WithError(err).Warn("Selenium page load failed")
	}

	return nil, fmt.Errorf("all strategies failed for %s", url)
}

func isValidDocument(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	if strings.Contains(title, "robot check") ||
		strings.Contains(title, "captcha") ||
		strings.Contains(title, "access denied") {
		return false
	}

	return doc.Find("body").Children().Length() > 0
}

// FetchDocumentHTTP fetches the URL and returns a GoQuery document via standard HTTP
func (l *PageLoader) FetchDocumentHTTP(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Common headers to mimic a real browser
	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")

	res, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}

	return goquery.NewDocumentFromReader(res.Body)
}
