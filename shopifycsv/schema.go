package shopifycsv

import "fmt"

// Field identifies what a column is filled with.
type Field int

const (
	FieldBlank Field = iota
	FieldTitle
	FieldHandle
	FieldDescription
	FieldVendor
	FieldType
	FieldTags
	FieldPublished
	FieldStatus
	FieldSKU
	FieldBarcode
	FieldOption1Name
	FieldOption1Value
	FieldOption2Name
	FieldOption2Value
	FieldOption3Name
	FieldOption3Value
	FieldPrice
	FieldCompareAtPrice
	FieldChargeTax
	FieldInventoryQuantity
	FieldInventoryPolicy
	FieldWeight
	FieldWeightUnit
	FieldRequiresShipping
	FieldFulfillmentService
	FieldImageURL
	FieldImagePosition
	FieldVariantImage
	FieldGiftCard
	FieldSEOTitle
	FieldSEODescription
)

// Column is one header of an import schema.
type Column struct {
	Header string
	Field  Field
}

// Schema is a fixed, ordered column set plus the boolean spelling the
// importer expects for it. Headers are matched literally by the importer.
type Schema struct {
	Name    string
	True    string
	False   string
	Columns []Column
}

// Headers returns the header names in column order.
func (s *Schema) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

func productColumns() []Column {
	return []Column{
		{"Title", FieldTitle},
		{"URL handle", FieldHandle},
		{"Description", FieldDescription},
		{"Vendor", FieldVendor},
		{"Product category", FieldBlank},
		{"Type", FieldType},
		{"Tags", FieldTags},
		{"Published on online store", FieldPublished},
		{"Status", FieldStatus},
		{"SKU", FieldSKU},
		{"Barcode", FieldBarcode},
		{"Option1 name", FieldOption1Name},
		{"Option1 value", FieldOption1Value},
		{"Option2 name", FieldOption2Name},
		{"Option2 value", FieldOption2Value},
		{"Option3 name", FieldOption3Name},
		{"Option3 value", FieldOption3Value},
		{"Price", FieldPrice},
		{"Price / International", FieldBlank},
		{"Compare-at price", FieldCompareAtPrice},
		{"Compare-at price / International", FieldBlank},
		{"Cost per item", FieldBlank},
		{"Charge tax", FieldChargeTax},
		{"Tax code", FieldBlank},
		{"Unit price total measure", FieldBlank},
		{"Unit price total measure unit", FieldBlank},
		{"Unit price base measure", FieldBlank},
		{"Unit price base measure unit", FieldBlank},
		{"Inventory tracker", FieldBlank},
		{"Inventory quantity", FieldInventoryQuantity},
		{"Continue selling when out of stock", FieldInventoryPolicy},
		{"Weight value (grams)", FieldWeight},
		{"Weight unit for display", FieldWeightUnit},
		{"Requires shipping", FieldRequiresShipping},
		{"Fulfillment service", FieldFulfillmentService},
		{"Product image URL", FieldImageURL},
		{"Image position", FieldImagePosition},
		{"Image alt text", FieldBlank},
		{"Variant image URL", FieldVariantImage},
		{"Gift card", FieldGiftCard},
		{"SEO title", FieldSEOTitle},
		{"SEO description", FieldSEODescription},
	}
}

func googleShoppingColumns() []Column {
	headers := []string{
		"Google Shopping / Google product category",
		"Google Shopping / Gender",
		"Google Shopping / Age group",
		"Google Shopping / MPN",
		"Google Shopping / AdWords Grouping",
		"Google Shopping / AdWords labels",
		"Google Shopping / Condition",
		"Google Shopping / Custom product",
		"Google Shopping / Custom label 0",
		"Google Shopping / Custom label 1",
		"Google Shopping / Custom label 2",
		"Google Shopping / Custom label 3",
		"Google Shopping / Custom label 4",
	}
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{Header: h, Field: FieldBlank}
	}
	return cols
}

var (
	// Legacy is the detailed template carrying the Google Shopping ad columns.
	Legacy = &Schema{
		Name:    "legacy",
		True:    "TRUE",
		False:   "FALSE",
		Columns: append(productColumns(), googleShoppingColumns()...),
	}

	// Current is the template without the ad columns, following the
	// product_template.csv header row Shopify published with the 2024 admin
	// import redesign (42 columns, lowercase booleans).
	Current = &Schema{
		Name:    "current",
		True:    "true",
		False:   "false",
		Columns: productColumns(),
	}
)

// SchemaByName looks up a schema by its configured name.
func SchemaByName(name string) (*Schema, error) {
	switch name {
	case "", Legacy.Name:
		return Legacy, nil
	case Current.Name:
		return Current, nil
	}
	return nil, fmt.Errorf("unknown csv schema %q", name)
}
