package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves the storefront JSON endpoints from in-memory data.
type fakeStore struct {
	t *testing.T

	mu       sync.Mutex
	requests []string

	// pages[n] is the number of products on listing page n; missing pages
	// are empty.
	pages map[int]int
	// listingStatus, when set, is returned for every listing request.
	listingStatus int
	// collections maps a collection slug to its page sizes.
	collections map[string]map[int]int
	// details maps a handle to its collection titles. Unknown handles 404.
	details map[string][]string
	// untitled lists handles served with a blank title.
	untitled map[string]bool
}

func newFakeStore(t *testing.T) (*fakeStore, *httptest.Server) {
	fs := &fakeStore{
		t:           t,
		pages:       map[int]int{},
		collections: map[string]map[int]int{},
		details:     map[string][]string{},
		untitled:    map[string]bool{},
	}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	fs.requests = append(fs.requests, r.URL.RequestURI())
	fs.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/products.json":
		if fs.listingStatus != 0 {
			http.Error(w, "blocked", fs.listingStatus)
			return
		}
		fs.writeListing(w, r, "p", fs.pages)
	case strings.HasPrefix(path, "/collections/") && strings.HasSuffix(path, "/products.json"):
		slug := strings.TrimSuffix(strings.TrimPrefix(path, "/collections/"), "/products.json")
		pages, ok := fs.collections[slug]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fs.writeListing(w, r, slug+"-p", pages)
	case strings.HasPrefix(path, "/products/") && strings.HasSuffix(path, ".json"):
		handle := strings.TrimSuffix(strings.TrimPrefix(path, "/products/"), ".json")
		titles, ok := fs.details[handle]
		if !ok {
			http.NotFound(w, r)
			return
		}
		collections := make([]map[string]string, len(titles))
		for i, title := range titles {
			collections[i] = map[string]string{"title": title}
		}
		product := fs.product(handle)
		product["collections"] = collections
		product["tags"] = "detail, record"
		json.NewEncoder(w).Encode(map[string]interface{}{"product": product})
	default:
		http.NotFound(w, r)
	}
}

func (fs *fakeStore) writeListing(w http.ResponseWriter, r *http.Request, prefix string, pages map[int]int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	assert.NoError(fs.t, err)
	assert.Equal(fs.t, strconv.Itoa(storefront.PageSize), r.URL.Query().Get("limit"))

	products := make([]map[string]interface{}, 0, pages[page])
	for i := 0; i < pages[page]; i++ {
		products = append(products, fs.product(fmt.Sprintf("%s%d-%d", prefix, page, i)))
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"products": products})
}

func (fs *fakeStore) requestCount(prefix string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, r := range fs.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (fs *fakeStore) product(handle string) map[string]interface{} {
	product := rawProduct(handle)
	if fs.untitled[handle] {
		product["title"] = "  "
	}
	return product
}

// sleepRecorder replaces pause for the duration of a test. Each call records
// the requested delay and the number of requests the store had seen.
type sleepRecorder struct {
	fs       *fakeStore
	prefix   string
	delays   []time.Duration
	requests []int
}

func recordSleeps(t *testing.T, fs *fakeStore, prefix string) *sleepRecorder {
	t.Helper()
	rec := &sleepRecorder{fs: fs, prefix: prefix}
	prev := pause
	pause = func(ctx context.Context, d time.Duration) error {
		rec.delays = append(rec.delays, d)
		rec.requests = append(rec.requests, fs.requestCount(prefix))
		return ctx.Err()
	}
	t.Cleanup(func() { pause = prev })
	return rec
}

func rawProduct(handle string) map[string]interface{} {
	return map[string]interface{}{
		"title":   "Product " + handle,
		"handle":  handle,
		"tags":    []string{"a", "b"},
		"options": []map[string]string{{"name": "Title"}},
		"variants": []map[string]interface{}{
			{"option1": "Default Title", "price": "10.00", "sku": handle},
		},
	}
}

func newClient(t *testing.T, srv *httptest.Server) *storefront.Client {
	t.Helper()
	client, err := storefront.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return client
}

func newPage(t *testing.T, srv *httptest.Server, path, html string) *base.Page {
	t.Helper()
	page, err := base.NewPageFromHTML(srv.URL+path, html)
	require.NoError(t, err)
	return page
}

type progressCall struct{ current, total int }

type progressRecorder struct {
	calls []progressCall
}

func (p *progressRecorder) record(current, total int) {
	p.calls = append(p.calls, progressCall{current, total})
}
