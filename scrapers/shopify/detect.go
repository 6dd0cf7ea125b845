package shopify

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	collectionPath = regexp.MustCompile(`/collections/([^/]+)`)
	productPath    = regexp.MustCompile(`/products/([^/]+)`)
	wordStart      = regexp.MustCompile(`\b\w`)
)

// scriptMarkers identify the global Shopify object in inline scripts.
var scriptMarkers = []string{"window.Shopify", "Shopify.shop", "var Shopify"}

const cdnMarker = "cdn.shopify.com"

// IsStorefront reports whether doc was served by a Shopify storefront. Any
// selector in markers matching, an inline script defining the Shopify global,
// or a reference to the Shopify CDN is enough.
func IsStorefront(doc *goquery.Document, markers []string) bool {
	for _, m := range markers {
		if doc.Find(m).Length() > 0 {
			return true
		}
	}

	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, m := range scriptMarkers {
			if strings.Contains(text, m) {
				found = true
				return false
			}
		}
		return true
	})
	if found {
		return true
	}

	html, err := doc.Html()
	return err == nil && strings.Contains(html, cdnMarker)
}

// CollectionSlug returns the collection handle in path, or "".
func CollectionSlug(path string) string {
	if m := collectionPath.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// ProductHandle returns the product handle in path, or "".
func ProductHandle(path string) string {
	if m := productPath.FindStringSubmatch(path); m != nil {
		return strings.TrimSuffix(m[1], ".json")
	}
	return ""
}

// CollectionTitle returns the text of the first element matching any of
// selectors, or the slug with hyphens turned into spaces and each word
// capitalized when the page has none.
func CollectionTitle(doc *goquery.Document, slug string, selectors []string) string {
	if doc != nil && len(selectors) > 0 {
		if title := strings.TrimSpace(doc.Find(strings.Join(selectors, ", ")).First().Text()); title != "" {
			return title
		}
	}
	return TitleFromSlug(slug)
}

// TitleFromSlug turns "summer-sale" into "Summer Sale".
func TitleFromSlug(slug string) string {
	return wordStart.ReplaceAllStringFunc(strings.ReplaceAll(slug, "-", " "), strings.ToUpper)
}
