// Package shopify implements the retrieval strategies for Shopify storefronts:
// the products.json paginators, the single product lookup, the collection
// enricher and the rendered markup fallback.
package shopify

import (
	"context"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/normalize"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	log "github.com/sirupsen/logrus"
)

// PageDelay is the pause between two listing requests.
const PageDelay = 100 * time.Millisecond

type pageFetcher func(ctx context.Context, page, limit int) ([]storefront.RawProduct, error)

// paginate walks a listing from page 1 until a request fails, a page comes
// back empty or a page is shorter than the page size. Whatever was gathered
// before a failure is kept.
func paginate(ctx context.Context, fetch pageFetcher, delay time.Duration, progress base.ProgressFunc, logger *log.Entry) []models.Product {
	var products []models.Product

	for page := 1; ; page++ {
		raw, err := fetch(ctx, page, storefront.PageSize)
		if err != nil {
			logger.WithError(err).WithField("page", page).Info("Listing request failed, stopping pagination")
			break
		}
		if len(raw) == 0 {
			break
		}

		products = append(products, normalize.Products(raw)...)
		if progress != nil {
			progress(len(products), len(products)+storefront.PageSize)
		}

		if len(raw) < storefront.PageSize {
			break
		}
		if err := pause(ctx, delay); err != nil {
			break
		}
	}

	logger.WithField("count", len(products)).Info("Pagination finished")
	return products
}

// pause waits between rate limited requests.
var pause = sleep

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Catalog walks the full product listing of a store.
type Catalog struct {
	Client *storefront.Client
	// Enricher, when set, runs over the gathered products.
	Enricher *Enricher
	Delay    time.Duration
}

// NewCatalog creates a full catalog paginator. Collection enrichment follows
// the ENRICH_COLLECTIONS setting.
func NewCatalog(client *storefront.Client) *Catalog {
	c := &Catalog{Client: client, Delay: PageDelay}
	if config.EnrichCollections {
		c.Enricher = NewEnricher(client)
	}
	return c
}

func (c *Catalog) Name() string { return "catalog" }

// Retrieve returns every product of the store. It never fails: a blocked
// listing simply yields no products.
func (c *Catalog) Retrieve(ctx context.Context, _ *base.Page, progress base.ProgressFunc) ([]models.Product, error) {
	logger := log.WithFields(log.Fields{"strategy": c.Name(), "store": c.Client.BaseURL.String()})

	products := paginate(ctx, c.Client.ProductsPage, c.Delay, progress, logger)
	if len(products) > 0 && c.Enricher != nil {
		c.Enricher.Enrich(ctx, products, progress)
	}
	return products, nil
}

// Collection walks the listing of the collection the page belongs to. Pages
// outside any collection are handed to Catalog.
type Collection struct {
	Client  *storefront.Client
	Catalog *Catalog
	// TitleSelectors locate the collection name on the page.
	TitleSelectors []string
	Delay          time.Duration
}

// NewCollection creates a collection paginator falling back to catalog.
func NewCollection(client *storefront.Client, catalog *Catalog, rules *config.SelectorRules) *Collection {
	return &Collection{
		Client:         client,
		Catalog:        catalog,
		TitleSelectors: rules.CollectionTitle,
		Delay:          PageDelay,
	}
}

func (c *Collection) Name() string { return "collection" }

func (c *Collection) Retrieve(ctx context.Context, page *base.Page, progress base.ProgressFunc) ([]models.Product, error) {
	slug := CollectionSlug(page.Path())
	if slug == "" {
		log.WithField("path", page.Path()).Info("Not on a collection page, exporting the full catalog")
		return c.Catalog.Retrieve(ctx, page, progress)
	}

	title := CollectionTitle(page.Doc, slug, c.TitleSelectors)
	logger := log.WithFields(log.Fields{"strategy": c.Name(), "collection": slug, "title": title})

	fetch := func(ctx context.Context, n, limit int) ([]storefront.RawProduct, error) {
		return c.Client.CollectionProductsPage(ctx, slug, n, limit)
	}
	products := paginate(ctx, fetch, c.Delay, progress, logger)
	for i := range products {
		products[i].Collections = []string{title}
	}
	return products, nil
}
