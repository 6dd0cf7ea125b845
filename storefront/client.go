package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PageSize is the largest page the products endpoints will serve.
const PageSize = 250

// StatusError is returned when an endpoint answers with a non-success status
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code error: %d %s (%s)", e.StatusCode, e.Status, e.URL)
}

// ErrNoProduct is returned when a detail response carries no product record.
var ErrNoProduct = errors.New("response contains no product")

// Client talks to the public JSON endpoints of one storefront
type Client struct {
	BaseURL   *url.URL
	HTTP      *http.Client
	UserAgent string
}

// NewClient creates a client for the store that serves storeURL. Only the
// scheme and host of storeURL are kept.
func NewClient(storeURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url %q: %w", storeURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store url %q: scheme and host required", storeURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL: &url.URL{Scheme: u.Scheme, Host: u.Host},
		HTTP:    httpClient,
	}, nil
}

// ProductsPage fetches one page of the full catalog listing. A missing
// products array decodes to an empty page.
func (c *Client) ProductsPage(ctx context.Context, page, limit int) ([]RawProduct, error) {
	return c.listing(ctx, "/products.json", page, limit)
}

// CollectionProductsPage fetches one page of a collection listing.
func (c *Client) CollectionProductsPage(ctx context.Context, slug string, page, limit int) ([]RawProduct, error) {
	return c.listing(ctx, "/collections/"+slug+"/products.json", page, limit)
}

// ProductByHandle fetches the detail record of one product.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*RawProduct, error) {
	return c.product(ctx, c.resolve("/products/"+handle+".json"))
}

// ProductByURL fetches the detail record behind a product page link. The
// query string is dropped and ".json" appended to the path.
func (c *Client) ProductByURL(ctx context.Context, productURL string) (*RawProduct, error) {
	u, err := c.BaseURL.Parse(productURL)
	if err != nil {
		return nil, fmt.Errorf("invalid product url %q: %w", productURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/") + ".json"
	u.RawPath = ""
	return c.product(ctx, u.String())
}

// Resolve turns a possibly relative or protocol-relative reference into an
// absolute URL on this store.
func (c *Client) Resolve(ref string) string {
	u, err := c.BaseURL.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func (c *Client) listing(ctx context.Context, path string, page, limit int) ([]RawProduct, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))

	var resp productsResponse
	if err := c.getJSON(ctx, c.resolve(path)+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) product(ctx context.Context, u string) (*RawProduct, error) {
	var resp productResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, ErrNoProduct
	}
	return resp.Product, nil
}

func (c *Client) resolve(path string) string {
	u := *c.BaseURL
	u.Path = path
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{URL: u, StatusCode: res.StatusCode, Status: res.Status}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
