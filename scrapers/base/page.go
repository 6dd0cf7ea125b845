package base

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProgressFunc receives the number of products gathered so far and the
// expected total. Implementations must not block.
type ProgressFunc func(current, total int)

// Page is the storefront page an export was started from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// NewPage wraps an already parsed document.
func NewPage(rawURL string, doc *goquery.Document) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid page url %q: scheme and host required", rawURL)
	}
	return &Page{URL: u, Doc: doc}, nil
}

// NewPageFromHTML parses html as the page served at rawURL.
func NewPageFromHTML(rawURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return NewPage(rawURL, doc)
}

// Path returns the URL path of the page.
func (p *Page) Path() string {
	return p.URL.Path
}

// StoreURL returns the scheme and host the page was served from.
func (p *Page) StoreURL() string {
	return p.URL.Scheme + "://" + p.URL.Host
}
