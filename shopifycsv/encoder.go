// Package shopifycsv renders canonical products as a Shopify product import
// file. One logical product spans several rows: its variant rows first, then
// one image-only row per additional image. Only the first row carries the
// product level columns.
package shopifycsv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
)

const seoDescriptionLimit = 320

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Encoder writes products using one schema.
type Encoder struct {
	Schema *Schema
}

// NewEncoder returns an encoder for schema, defaulting to Legacy.
func NewEncoder(schema *Schema) *Encoder {
	if schema == nil {
		schema = Legacy
	}
	return &Encoder{Schema: schema}
}

// Encode renders the header line followed by every product's rows. Every
// line, the last one included, ends with "\n".
func (e *Encoder) Encode(products []models.Product) string {
	var b strings.Builder
	e.writeLine(&b, e.Schema.Headers())

	for i := range products {
		e.writeProduct(&b, &products[i])
	}
	return b.String()
}

func (e *Encoder) writeProduct(b *strings.Builder, p *models.Product) {
	r := row{
		product: p,
		handle:  utils.Slugify(p.Title),
		tags:    tagsWithCollections(p),
		seo:     SEODescription(p.Description),
	}

	if len(p.Variants) == 0 {
		r.first = true
		e.writeRow(b, &r)
	} else {
		for i := range p.Variants {
			r.first = i == 0
			r.variant = &p.Variants[i]
			e.writeRow(b, &r)
		}
	}

	for i := 1; i < len(p.Images); i++ {
		img := row{product: p, handle: r.handle, imageOnly: true, image: i}
		e.writeRow(b, &img)
	}
}

func (e *Encoder) writeRow(b *strings.Builder, r *row) {
	fields := make([]string, len(e.Schema.Columns))
	for i, col := range e.Schema.Columns {
		fields[i] = e.value(col.Field, r)
	}
	e.writeLine(b, fields)
}

func (e *Encoder) writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
	b.WriteByte('\n')
}

type row struct {
	product   *models.Product
	variant   *models.Variant // nil for a product without variants
	first     bool
	imageOnly bool
	image     int // index into product.Images for image-only rows
	handle    string
	tags      string
	seo       string
}

func (e *Encoder) value(field Field, r *row) string {
	p := r.product

	if r.imageOnly {
		switch field {
		case FieldHandle:
			return r.handle
		case FieldImageURL:
			return p.Images[r.image]
		case FieldImagePosition:
			return strconv.Itoa(r.image + 1)
		}
		return ""
	}

	v := r.variant
	if v == nil {
		v = &models.Variant{}
	}

	switch field {
	case FieldTitle, FieldSEOTitle:
		return firstOnly(r, p.Title)
	case FieldHandle:
		return firstOnly(r, r.handle)
	case FieldDescription:
		return firstOnly(r, p.Description)
	case FieldVendor:
		return firstOnly(r, p.Vendor)
	case FieldType:
		return firstOnly(r, p.Type)
	case FieldTags:
		return firstOnly(r, r.tags)
	case FieldPublished:
		return firstOnly(r, e.Schema.True)
	case FieldStatus:
		return firstOnly(r, "active")
	case FieldSEODescription:
		return firstOnly(r, r.seo)
	case FieldSKU:
		return v.SKU
	case FieldBarcode:
		return v.Barcode
	case FieldOption1Name:
		return firstOnly(r, v.Option1Name)
	case FieldOption1Value:
		return v.Option1Value
	case FieldOption2Name:
		return firstOnly(r, v.Option2Name)
	case FieldOption2Value:
		return v.Option2Value
	case FieldOption3Name:
		return firstOnly(r, v.Option3Name)
	case FieldOption3Value:
		return v.Option3Value
	case FieldPrice:
		if v.Price != "" {
			return v.Price
		}
		return p.Price
	case FieldCompareAtPrice:
		if r.variant == nil {
			return p.CompareAtPrice
		}
		return v.CompareAtPrice
	case FieldChargeTax, FieldRequiresShipping:
		return e.Schema.True
	case FieldGiftCard:
		return e.Schema.False
	case FieldInventoryQuantity:
		return "0"
	case FieldInventoryPolicy:
		return "deny"
	case FieldWeight:
		return v.Weight
	case FieldWeightUnit:
		return "g"
	case FieldFulfillmentService:
		return "manual"
	case FieldImageURL:
		if len(p.Images) > 0 {
			return firstOnly(r, p.Images[0])
		}
	case FieldImagePosition:
		if len(p.Images) > 0 {
			return firstOnly(r, "1")
		}
	case FieldVariantImage:
		return v.Image
	}
	return ""
}

func firstOnly(r *row, s string) string {
	if r.first {
		return s
	}
	return ""
}

// tagsWithCollections appends one "Collection:<name>" tag per collection.
func tagsWithCollections(p *models.Product) string {
	if len(p.Collections) == 0 {
		return p.Tags
	}
	collectionTags := make([]string, len(p.Collections))
	for i, c := range p.Collections {
		collectionTags[i] = "Collection:" + c
	}
	joined := strings.Join(collectionTags, ", ")
	if p.Tags == "" {
		return joined
	}
	return p.Tags + ", " + joined
}

// StripTags removes every <...> sequence and trims the result.
func StripTags(html string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(html, ""))
}

// SEODescription is the tag-stripped description cut to 320 characters.
func SEODescription(html string) string {
	text := []rune(StripTags(html))
	if len(text) > seoDescriptionLimit {
		text = text[:seoDescriptionLimit]
	}
	return string(text)
}

// Escape quotes a field holding a comma, double quote or line break, doubling
// inner quotes. Surrounding whitespace is trimmed and carriage returns are
// dropped.
func Escape(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	s = strings.ReplaceAll(s, `"`, `""`)
	s = strings.ReplaceAll(s, "\r", "")
	return `"` + s + `"`
}

// Filename returns the download name for an export finished at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("shopify-products-%d.csv", t.UnixMilli())
}
