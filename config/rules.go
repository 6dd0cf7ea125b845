package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// SelectorRules holds the ordered selector chains used when product data has
// to be read from rendered storefront markup. Earlier entries win.
type SelectorRules struct {
	ProductElements   []string `yaml:"product_elements"`
	Title             []string `yaml:"title"`
	ProductLink       string   `yaml:"product_link"`
	Price             []string `yaml:"price"`
	CollectionTitle   []string `yaml:"collection_title"`
	ImageExclusions   []string `yaml:"image_exclusions"`
	LowResSuffixes    []string `yaml:"low_res_suffixes"`
	HighResSuffix     string   `yaml:"high_res_suffix"`
	StorefrontMarkers []string `yaml:"storefront_markers"`
}

// DefaultSelectorRules returns the built-in rule set.
func DefaultSelectorRules() *SelectorRules {
	return &SelectorRules{
		ProductElements: []string{
			"[data-product-id]",
			".product-item",
			".product-card",
			".product",
			`[class*="product"]`,
		},
		Title: []string{
			".product-title",
			".product__title",
			`[class*="product-title"]`,
			"h2",
			"h3",
			`a[href*="/products/"]`,
		},
		ProductLink: `a[href*="/products/"]`,
		Price: []string{
			".price",
			".product-price",
			`[class*="price"]`,
			"[data-price]",
		},
		CollectionTitle: []string{
			"h1",
			".collection-title",
			`[class*="collection-title"]`,
		},
		ImageExclusions: []string{"data:image", "placeholder"},
		LowResSuffixes:  []string{"_small", "_compact", "_medium", "_grande"},
		HighResSuffix:   "_2048x2048",
		StorefrontMarkers: []string{
			`meta[name="shopify-digital-wallet"]`,
			`meta[name="shopify-checkout-api-token"]`,
			"[data-shopify]",
		},
	}
}

// LoadSelectorRules reads a YAML rule file. Sections missing from the file keep
// their defaults, so a theme override only needs to list what it changes.
func LoadSelectorRules(path string) (*SelectorRules, error) {
	rules := DefaultSelectorRules()
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read selector rules: %w", err)
	}

	var override SelectorRules
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return rules, fmt.Errorf("parse selector rules %s: %w", path, err)
	}

	mergeList(&rules.ProductElements, override.ProductElements)
	mergeList(&rules.Title, override.Title)
	mergeList(&rules.Price, override.Price)
	mergeList(&rules.CollectionTitle, override.CollectionTitle)
	mergeList(&rules.ImageExclusions, override.ImageExclusions)
	mergeList(&rules.LowResSuffixes, override.LowResSuffixes)
	mergeList(&rules.StorefrontMarkers, override.StorefrontMarkers)
	if override.ProductLink != "" {
		rules.ProductLink = override.ProductLink
	}
	if override.HighResSuffix != "" {
		rules.HighResSuffix = override.HighResSuffix
	}

	return rules, nil
}

func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
