package scrapers

import (
	"fmt"
	"strings"

	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/shopify"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
)

// Mode selects which products of the store an export covers.
type Mode string

const (
	ModeProduct    Mode = "product"
	ModeCollection Mode = "collection"
	ModeAll        Mode = "all"
)

// ParseMode accepts the mode names used by the API and CLI. An empty name
// means ModeCollection.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeProduct:
		return ModeProduct, nil
	case ModeCollection, "":
		return ModeCollection, nil
	case ModeAll, "catalog", "full":
		return ModeAll, nil
	}
	return "", fmt.Errorf("unknown export mode %q", name)
}

// GetStrategies returns the strategies to try for mode, in order. The markup
// scraper always comes last.
func GetStrategies(mode Mode, client *storefront.Client, rules *config.SelectorRules) []Strategy {
	catalog := shopify.NewCatalog(client)
	dom := &shopify.DOM{Client: client, Rules: rules}

	switch mode {
	case ModeProduct:
		return []Strategy{&shopify.SingleProduct{Client: client}, dom}
	case ModeAll:
		return []Strategy{catalog, dom}
	default:
		return []Strategy{shopify.NewCollection(client, catalog, rules), dom}
	}
}
