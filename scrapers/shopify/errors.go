package shopify

import "errors"

// Terminal failures reported to the caller. The messages are shown to users
// as is.
var (
	ErrNotStorefront   = errors.New("This does not appear to be a Shopify store")
	ErrNoProductsFound = errors.New("No products found on this page. Please navigate to a products or collection page.")
	ErrUnparseable     = errors.New("Could not extract product data. The page structure may not be supported.")
)
