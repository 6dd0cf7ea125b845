package shopify

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/normalize"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

var priceNumber = regexp.MustCompile(`[\d,]+\.?\d*`)

// DOM reads products out of rendered storefront markup. It is the last
// resort when the JSON listings yield nothing.
type DOM struct {
	Client *storefront.Client
	Rules  *config.SelectorRules
}

func (d *DOM) Name() string { return "dom" }

// Retrieve scrapes every candidate product element on the page, one at a
// time. Elements without a title are dropped.
func (d *DOM) Retrieve(ctx context.Context, page *base.Page, progress base.ProgressFunc) ([]models.Product, error) {
	elements := page.Doc.Find(strings.Join(d.Rules.ProductElements, ", "))
	total := elements.Length()
	if total == 0 {
		return nil, ErrNoProductsFound
	}

	logger := log.WithFields(log.Fields{"strategy": d.Name(), "elements": total})
	logger.Info("Scraping product elements")

	var products []models.Product
	elements.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		p := d.scrapeElement(ctx, el)
		if p.Title == "" {
			return true
		}
		products = append(products, p)
		if progress != nil {
			progress(len(products), total)
		}
		return true
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrUnparseable
	}
	logger.WithField("count", len(products)).Info("Scraping finished")
	return products, nil
}

// scrapeElement prefers the product's JSON detail record and falls back to
// whatever the element itself shows.
func (d *DOM) scrapeElement(ctx context.Context, el *goquery.Selection) models.Product {
	if href, ok := el.Find(d.Rules.ProductLink).First().Attr("href"); ok && href != "" {
		raw, err := d.Client.ProductByURL(ctx, d.Client.Resolve(href))
		if err == nil && normalize.HasTitle(raw) {
			p := normalize.Product(raw)
			p.Collections = normalize.CollectionTitles(raw)
			return p
		}
		if err != nil {
			log.WithError(err).WithField("href", href).Debug("Product detail unavailable, reading markup")
		}
	}

	title := firstText(el, d.Rules.Title)
	return models.Product{
		Title:       title,
		Handle:      utils.Slugify(title),
		Price:       d.price(el),
		Collections: []string{},
		Images:      d.images(el),
		Variants:    []models.Variant{},
	}
}

// firstText returns the trimmed text of the first selector with a non-empty
// match.
func firstText(el *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(el.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// price reads the first number out of the first element matching a price
// selector. Only that element is considered even if it holds no number.
func (d *DOM) price(el *goquery.Selection) string {
	for _, s := range d.Rules.Price {
		match := el.Find(s).First()
		if match.Length() == 0 {
			continue
		}
		if n := priceNumber.FindString(strings.TrimSpace(match.Text())); n != "" {
			return strings.ReplaceAll(n, ",", "")
		}
		return ""
	}
	return ""
}

func (d *DOM) images(el *goquery.Selection) []string {
	images := []string{}
	el.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		if src == "" || d.excluded(src) {
			return
		}
		images = append(images, d.Client.Resolve(d.upgrade(src)))
	})
	return images
}

func (d *DOM) excluded(src string) bool {
	for _, marker := range d.Rules.ImageExclusions {
		if strings.Contains(src, marker) {
			return true
		}
	}
	return false
}

// upgrade swaps the earliest low resolution suffix for the high resolution
// one. Only the first occurrence is replaced.
func (d *DOM) upgrade(src string) string {
	at, suffix := -1, ""
	for _, s := range d.Rules.LowResSuffixes {
		if i := strings.Index(src, s); i >= 0 && (at < 0 || i < at) {
			at, suffix = i, s
		}
	}
	if at < 0 {
		return src
	}
	return src[:at] + d.Rules.HighResSuffix + src[at+len(suffix):]
}
