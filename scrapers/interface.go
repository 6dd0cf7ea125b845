package scrapers

import (
	"context"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
)

// Strategy defines one way of retrieving the products of a storefront page
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string
	// Retrieve produces canonical products for the page. An empty result
	// without error means the strategy found nothing.
	Retrieve(ctx context.Context, page *base.Page, progress base.ProgressFunc) ([]models.Product, error)
}
