package shopify

import (
	"context"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/normalize"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	log "github.com/sirupsen/logrus"
)

const (
	enrichProgressEvery = 10
	enrichPauseEvery    = 20
)

// Enricher fills in collection memberships with one detail request per
// product, strictly one after another.
type Enricher struct {
	Client *storefront.Client
	Delay  time.Duration
}

// NewEnricher creates an enricher using the listing page delay.
func NewEnricher(client *storefront.Client) *Enricher {
	return &Enricher{Client: client, Delay: PageDelay}
}

// Enrich sets Collections on every product that has none yet. A failed
// lookup leaves that product with an empty list and never stops the pass.
func (e *Enricher) Enrich(ctx context.Context, products []models.Product, progress base.ProgressFunc) {
	logger := log.WithField("count", len(products))
	logger.Info("Enriching products with collections")

	failed := 0
	for i := range products {
		if ctx.Err() != nil {
			break
		}

		p := &products[i]
		if len(p.Collections) == 0 {
			p.Collections = e.collections(ctx, p.Handle)
			if p.Collections == nil {
				p.Collections = []string{}
				failed++
			}
		}

		if progress != nil && i%enrichProgressEvery == 0 {
			progress(i, len(products))
		}
		if i%enrichPauseEvery == 0 {
			if err := pause(ctx, e.Delay); err != nil {
				break
			}
		}
	}

	logger.WithField("failed", failed).Info("Collection enrichment complete")
}

// collections returns nil when the lookup failed.
func (e *Enricher) collections(ctx context.Context, handle string) []string {
	if handle == "" {
		return nil
	}
	raw, err := e.Client.ProductByHandle(ctx, handle)
	if err != nil {
		log.WithError(err).WithField("handle", handle).Debug("Collection lookup failed")
		return nil
	}
	return normalize.CollectionTitles(raw)
}
