package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/exporter"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storePage = `<html><head><meta name="shopify-digital-wallet" content="/1"></head>
<body><h1>Mugs</h1><div class="product-card"><h3>Blue Mug</h3></div></body></html>`

// newStore serves one storefront page at every path and a two product
// catalog listing.
func newStore(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[
			{"title":"Blue Mug","tags":["mug"],"variants":[{"price":"12.00","sku":"BM"}]},
			{"title":"Red Mug","tags":[],"variants":[{"price":"14.00","sku":"RM"}]}]}`))
	})
	mux.HandleFunc("/collections/empty/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".json") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(storePage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	SetExporter(exporter.New(srv.Client(), nil))
	return srv
}

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.JWTSecret
	config.JWTSecret = secret
	t.Cleanup(func() { config.JWTSecret = prev })
}

func TestExportHandlerReturnsCSV(t *testing.T) {
	store := newStore(t)

	q := url.Values{"url": {store.URL + "/"}, "mode": {"all"}, "schema": {"current"}}
	req := httptest.NewRequest(http.MethodGet, "/export?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	ExportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="shopify-products-\d+\.csv"$`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get("X-Product-Count"))
	assert.NotEmpty(t, rec.Header().Get("X-Export-Id"))

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Title,URL handle,Description"))
	assert.True(t, strings.HasPrefix(lines[1], "Blue Mug,blue-mug,"))
	assert.Contains(t, lines[1], ",true,")
}

func TestExportHandlerAcceptsJSONBody(t *testing.T) {
	store := newStore(t)

	body := `{"url":"` + store.URL + `/collections/mugs","mode":"product"}`
	rec := httptest.NewRecorder()
	ExportHandler(rec, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Product-Count"), "not a product page, markup scraper used")
	assert.Contains(t, rec.Body.String(), "Google Shopping / Custom label 4")
}

func TestExportHandlerRejectsBadInput(t *testing.T) {
	newStore(t)

	rec := httptest.NewRecorder()
	ExportHandler(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	ExportHandler(rec, httptest.NewRequest(http.MethodGet, "/export?url=https://x.test&mode=everything", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	ExportHandler(rec, httptest.NewRequest(http.MethodDelete, "/export", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExportHandlerReportsTerminalFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Just a blog</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	SetExporter(exporter.New(srv.Client(), nil))

	rec := httptest.NewRecorder()
	ExportHandler(rec, httptest.NewRequest(http.MethodGet, "/export?url="+url.QueryEscape(srv.URL), nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "This does not appear to be a Shopify store", body["error"])
}

func TestAuthMiddleware(t *testing.T) {
	withSecret(t, "s3cret")

	var seen string
	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := utils.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ops", seen)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/export/ws?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthMiddlewareOpenWithoutSecret(t *testing.T) {
	withSecret(t, "")

	rec := httptest.NewRecorder()
	AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDetectHandler(t *testing.T) {
	store := newStore(t)

	rec := httptest.NewRecorder()
	DetectHandler(rec, httptest.NewRequest(http.MethodGet, "/detect?url="+url.QueryEscape(store.URL+"/collections/mugs/products/blue-mug"), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsShopify)
	assert.Equal(t, store.URL, resp.StoreURL)
	assert.Equal(t, "mugs", resp.Collection)
	assert.Equal(t, "Mugs", resp.CollectionTitle)
	assert.Equal(t, "blue-mug", resp.Product)
}

func TestStatusHandlerWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.History)
	assert.WithinDuration(t, startedAt, resp.InstalledAt, time.Second)
}

func TestExportsHandlerWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	ExportsHandler(rec, httptest.NewRequest(http.MethodGet, "/exports", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPagination(t *testing.T) {
	page, limit := pagination(httptest.NewRequest(http.MethodGet, "/exports?page=3&limit=500", nil))
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	page, limit = pagination(httptest.NewRequest(http.MethodGet, "/exports?page=-1&limit=x", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}

func TestExportWSStreamsEvents(t *testing.T) {
	store := newStore(t)
	srv := httptest.NewServer(http.HandlerFunc(ExportWSHandler))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ExportRequest{URL: store.URL + "/", Mode: "all"}))

	var events []exporter.Event
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var ev exporter.Event
		require.NoError(t, conn.ReadJSON(&ev))
		events = append(events, ev)
		if ev.Type != exporter.EventProgress {
			break
		}
	}

	last := events[len(events)-1]
	assert.Equal(t, exporter.EventComplete, last.Type)
	assert.Equal(t, 2, last.Count)
	assert.Regexp(t, `^shopify-products-\d+\.csv$`, last.Filename)
	assert.True(t, strings.HasPrefix(last.CSV, "Title,URL handle,"))
}

func TestExportWSReportsErrors(t *testing.T) {
	newStore(t)
	srv := httptest.NewServer(http.HandlerFunc(ExportWSHandler))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?url=https://x.test&mode=bogus"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var ev exporter.Event
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, exporter.EventError, ev.Type)
	assert.Contains(t, ev.Error, "unknown export mode")
}
