package models

// Variant represents one purchasable option combination of a product
type Variant struct {
	Option1Name    string `json:"option1_name"`
	Option1Value   string `json:"option1_value"`
	Option2Name    string `json:"option2_name"`
	Option2Value   string `json:"option2_value"`
	Option3Name    string `json:"option3_name"`
	Option3Value   string `json:"option3_value"`
	Price          string `json:"price"`
	CompareAtPrice string `json:"compare_at_price"`
	SKU            string `json:"sku"`
	Barcode        string `json:"barcode"`
	Weight         string `json:"weight"` // grams
	Image          string `json:"image"`  // variant image, or the product's first image
}

// Product is the canonical product shape every retrieval strategy produces.
// An empty Variants slice means a single implicit variant priced by Price.
type Product struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"` // HTML
	Vendor         string    `json:"vendor"`
	Type           string    `json:"type"`
	Tags           string    `json:"tags"` // comma joined
	Handle         string    `json:"handle"`
	Collections    []string  `json:"collections"`
	Images         []string  `json:"images"`
	Variants       []Variant `json:"variants"`
	Price          string    `json:"price"`
	CompareAtPrice string    `json:"compare_at_price"`
}
