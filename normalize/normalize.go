// Package normalize maps raw storefront product records onto the canonical
// product model. Listing, collection and detail responses all go through
// Product so the three sources can never drift apart.
package normalize

import (
	"strings"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
)

const maxOptions = 3

// Product converts one raw record. Collections is left empty for the caller
// to fill from scope or enrichment.
func Product(raw *storefront.RawProduct) models.Product {
	p := models.Product{
		Title:       raw.Title,
		Description: raw.BodyHTML,
		Vendor:      raw.Vendor,
		Type:        raw.ProductType,
		Tags:        strings.Join(raw.Tags, ", "),
		Handle:      raw.Handle,
		Collections: []string{},
		Images:      imageSources(raw.Images),
		Variants:    make([]models.Variant, 0, len(raw.Variants)),
	}
	if p.Handle == "" {
		p.Handle = utils.Slugify(p.Title)
	}

	optionNames := make([]string, maxOptions)
	for i := 0; i < maxOptions && i < len(raw.Options); i++ {
		optionNames[i] = raw.Options[i].Name
	}

	for _, v := range raw.Variants {
		p.Variants = append(p.Variants, models.Variant{
			Option1Name:    optionNames[0],
			Option1Value:   v.Option1.String(),
			Option2Name:    optionNames[1],
			Option2Value:   v.Option2.String(),
			Option3Name:    optionNames[2],
			Option3Value:   v.Option3.String(),
			Price:          v.Price.String(),
			CompareAtPrice: v.CompareAtPrice.String(),
			SKU:            v.SKU.String(),
			Barcode:        v.Barcode.String(),
			Weight:         weight(v),
			Image:          variantImage(raw, v.ImageID),
		})
	}

	if len(p.Variants) == 0 && len(raw.Variants) > 0 {
		p.Price = raw.Variants[0].Price.String()
		p.CompareAtPrice = raw.Variants[0].CompareAtPrice.String()
	}

	return p
}

// Products converts a page of raw records. Records without a title are
// dropped.
func Products(raw []storefront.RawProduct) []models.Product {
	out := make([]models.Product, 0, len(raw))
	for i := range raw {
		if !HasTitle(&raw[i]) {
			continue
		}
		out = append(out, Product(&raw[i]))
	}
	return out
}

// HasTitle reports whether raw carries a non-blank title.
func HasTitle(raw *storefront.RawProduct) bool {
	return strings.TrimSpace(raw.Title) != ""
}

// CollectionTitles returns the titles of the collections listed on a detail
// record, never nil.
func CollectionTitles(raw *storefront.RawProduct) []string {
	titles := make([]string, 0, len(raw.Collections))
	for _, c := range raw.Collections {
		titles = append(titles, c.Title)
	}
	return titles
}

func imageSources(images []storefront.RawImage) []string {
	srcs := make([]string, 0, len(images))
	for _, img := range images {
		if img.Src != "" {
			srcs = append(srcs, img.Src)
		}
	}
	return srcs
}

// variantImage resolves the variant's own image by id, falling back to the
// first product image.
func variantImage(raw *storefront.RawProduct, imageID int64) string {
	if imageID != 0 {
		for _, img := range raw.Images {
			if img.ID == imageID && img.Src != "" {
				return img.Src
			}
		}
	}
	for _, img := range raw.Images {
		if img.Src != "" {
			return img.Src
		}
	}
	return ""
}

func weight(v storefront.RawVariant) string {
	if v.Grams != "" {
		return v.Grams.String()
	}
	return v.Weight.String()
}
