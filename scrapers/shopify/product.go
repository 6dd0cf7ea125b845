package shopify

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/normalize"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	log "github.com/sirupsen/logrus"
)

// SingleProduct exports the product a /products/<handle> page shows.
type SingleProduct struct {
	Client *storefront.Client
}

func (s *SingleProduct) Name() string { return "product" }

// Retrieve yields nothing outside a product page.
func (s *SingleProduct) Retrieve(ctx context.Context, page *base.Page, progress base.ProgressFunc) ([]models.Product, error) {
	handle := ProductHandle(page.Path())
	if handle == "" {
		log.WithField("path", page.Path()).Info("Not on a product page")
		return nil, nil
	}

	raw, err := s.Client.ProductByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", handle, err)
	}

	if !normalize.HasTitle(raw) {
		log.WithField("handle", handle).Info("Product record has no title, skipping")
		return nil, nil
	}

	p := normalize.Product(raw)
	p.Collections = normalize.CollectionTitles(raw)
	if progress != nil {
		progress(1, 1)
	}
	return []models.Product{p}, nil
}
