package storefront

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString accepts a JSON string, number or null. Storefront payloads are not
// consistent about quoting prices and weights, and option values may be null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// TagList decodes tags given either as an array (listing endpoints) or as one
// comma separated string (product detail endpoint).
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		var tags []string
		for _, tag := range strings.Split(joined, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		*t = tags
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*t = tags
	return nil
}

type RawImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type RawOption struct {
	Name string `json:"name"`
}

type RawVariant struct {
	Option1        FlexString `json:"option1"`
	Option2        FlexString `json:"option2"`
	Option3        FlexString `json:"option3"`
	Price          FlexString `json:"price"`
	CompareAtPrice FlexString `json:"compare_at_price"`
	SKU            FlexString `json:"sku"`
	Barcode        FlexString `json:"barcode"`
	Grams          FlexString `json:"grams"`
	Weight         FlexString `json:"weight"`
	ImageID        int64      `json:"image_id"`
}

type RawCollection struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// RawProduct is one product record as returned by the storefront JSON endpoints
type RawProduct struct {
	Title       string          `json:"title"`
	BodyHTML    string          `json:"body_html"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Handle      string          `json:"handle"`
	Tags        TagList         `json:"tags"`
	Images      []RawImage      `json:"images"`
	Variants    []RawVariant    `json:"variants"`
	Options     []RawOption     `json:"options"`
	Collections []RawCollection `json:"collections"`
}

type productsResponse struct {
	Products []RawProduct `json:"products"`
}

type productResponse struct {
	Product *RawProduct `json:"product"`
}
