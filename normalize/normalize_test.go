package normalize

import (
	"encoding/json"
	"testing"

	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingRecord = `{
  "title": "Linen Shirt",
  "body_html": "<p>Breathable</p>",
  "vendor": "Acme",
  "product_type": "Shirts",
  "handle": "linen-shirt",
  "tags": ["summer", "linen"],
  "options": [{"name": "Size"}, {"name": "Color"}],
  "images": [
    {"id": 11, "src": "https://cdn.example.com/front.jpg"},
    {"id": 12, "src": "https://cdn.example.com/back.jpg"}
  ],
  "variants": [
    {"option1": "S", "option2": "Blue", "option3": null, "price": "30.00", "compare_at_price": "45.00", "sku": "LS-S-B", "barcode": "123", "grams": 200, "image_id": 12},
    {"option1": "M", "option2": "Blue", "option3": null, "price": "30.00", "compare_at_price": null, "sku": "LS-M-B", "barcode": null, "grams": 220, "image_id": 99},
    {"option1": "L", "option2": "Blue", "price": "32.00", "sku": "LS-L-B", "weight": 0.25}
  ]
}`

func decode(t *testing.T, body string) *storefront.RawProduct {
	t.Helper()
	var raw storefront.RawProduct
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return &raw
}

func TestProductMapsListingRecord(t *testing.T) {
	p := Product(decode(t, listingRecord))

	assert.Equal(t, "Linen Shirt", p.Title)
	assert.Equal(t, "<p>Breathable</p>", p.Description)
	assert.Equal(t, "Acme", p.Vendor)
	assert.Equal(t, "Shirts", p.Type)
	assert.Equal(t, "summer, linen", p.Tags)
	assert.Equal(t, "linen-shirt", p.Handle)
	assert.NotNil(t, p.Collections)
	assert.Empty(t, p.Collections)
	assert.Equal(t, []string{"https://cdn.example.com/front.jpg", "https://cdn.example.com/back.jpg"}, p.Images)
	require.Len(t, p.Variants, 3)

	first := p.Variants[0]
	assert.Equal(t, "Size", first.Option1Name)
	assert.Equal(t, "S", first.Option1Value)
	assert.Equal(t, "Color", first.Option2Name)
	assert.Equal(t, "Blue", first.Option2Value)
	assert.Empty(t, first.Option3Name)
	assert.Empty(t, first.Option3Value)
	assert.Equal(t, "30.00", first.Price)
	assert.Equal(t, "45.00", first.CompareAtPrice)
	assert.Equal(t, "LS-S-B", first.SKU)
	assert.Equal(t, "123", first.Barcode)
	assert.Equal(t, "200", first.Weight)
	assert.Equal(t, "https://cdn.example.com/back.jpg", first.Image)

	// unknown image id falls back to the first product image
	assert.Equal(t, "https://cdn.example.com/front.jpg", p.Variants[1].Image)
	assert.Empty(t, p.Variants[1].CompareAtPrice)
	assert.Empty(t, p.Variants[1].Barcode)

	// no image id at all, weight without grams
	assert.Equal(t, "https://cdn.example.com/front.jpg", p.Variants[2].Image)
	assert.Equal(t, "0.25", p.Variants[2].Weight)

	assert.Empty(t, p.Price)
	assert.Empty(t, p.CompareAtPrice)
}

func TestProductWithoutImagesOrVariants(t *testing.T) {
	p := Product(decode(t, `{"title": "Gift Card", "tags": "gift, card"}`))

	assert.Equal(t, "gift-card", p.Handle, "handle is derived when absent")
	assert.Equal(t, "gift, card", p.Tags)
	assert.Empty(t, p.Images)
	assert.NotNil(t, p.Variants)
	assert.Empty(t, p.Variants)
	assert.Empty(t, p.Price)
}

func TestVariantWithoutImages(t *testing.T) {
	p := Product(decode(t, `{"title": "Sticker", "options": [{"name": "Title"}], "variants": [{"option1": "Default Title", "price": 3, "image_id": 5}]}`))

	require.Len(t, p.Variants, 1)
	assert.Empty(t, p.Variants[0].Image)
	assert.Equal(t, "3", p.Variants[0].Price)
	assert.Equal(t, "Title", p.Variants[0].Option1Name)
}

func TestProductsKeepsOrder(t *testing.T) {
	raw := []storefront.RawProduct{{Title: "B"}, {Title: "A"}}
	products := Products(raw)
	require.Len(t, products, 2)
	assert.Equal(t, "B", products[0].Title)
	assert.Equal(t, "A", products[1].Title)
}

func TestProductsDropsUntitledRecords(t *testing.T) {
	var page struct {
		Products []storefront.RawProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"products": [
		{"title": "Mug", "variants": [{"price": "7.00"}]},
		{"title": "", "variants": [{"price": "7.00"}]},
		{"title": "   ", "handle": "blank"},
		{"handle": "missing"}
	]}`), &page))

	products := Products(page.Products)
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Title)
	assert.Equal(t, "mug", products[0].Handle)
}

func TestCollectionTitles(t *testing.T) {
	raw := decode(t, `{"title": "Tee", "collections": [{"title": "Shirts"}, {"title": "Sale"}]}`)
	assert.Equal(t, []string{"Shirts", "Sale"}, CollectionTitles(raw))

	assert.Equal(t, []string{}, CollectionTitles(&storefront.RawProduct{}))
}
